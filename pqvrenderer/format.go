package pqvrenderer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rivo/tview"
)

const (
	lineNumberColor = "gray"
	jsonKeyColor    = "aqua"
	yamlKeyColor    = "yellow"
)

var (
	jsonKeyRegexp = regexp.MustCompile(`^(\s*)("(?:[^"\\]|\\.)*")(:)`)
	yamlKeyRegexp = regexp.MustCompile(`^(\s*(?:- )?)([^\s:#-][^:]*)(:)`)
)

// FormatJSON prepares indented JSON for a TextView with dynamic colors: keys are coloured and lines numbered.
func FormatJSON(text string) string {
	return formatLines(text, jsonKeyRegexp, jsonKeyColor)
}

// FormatYAML is the YAML equivalent of FormatJSON.
func FormatYAML(text string) string {
	return formatLines(text, yamlKeyRegexp, yamlKeyColor)
}

func formatLines(text string, keyRegexp *regexp.Regexp, keyColor string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	numberWidth := len(strconv.Itoa(len(lines)))
	keyReplacement := fmt.Sprintf("${1}[%s]${2}[-]${3}", keyColor)

	formatted := make([]string, len(lines))
	for i, line := range lines {
		line = keyRegexp.ReplaceAllString(tview.Escape(line), keyReplacement)
		formatted[i] = fmt.Sprintf("[%s]%*d[-] %s", lineNumberColor, numberWidth, i+1, line)
	}

	return strings.Join(formatted, "\n")
}
