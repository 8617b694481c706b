package pqvrenderer

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/rivo/tview"
)

type ActionFunc func(app *App) errorsx.Error

// KeyBinding maps one key to an action. Rune is only used when Key is tcell.KeyRune.
// Bindings without a Label are not listed in the footer.
type KeyBinding struct {
	Key         tcell.Key
	Rune        rune
	Label       string
	Description string
	Action      ActionFunc
}

func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Key: tcell.KeyRune, Rune: 'q', Label: "q", Description: "Quit", Action: ActionQuit},
		{Key: tcell.KeyEscape, Description: "Quit", Action: ActionQuit},
		{Key: tcell.KeyLeft, Label: "←", Description: "Previous", Action: ActionPrevious},
		{Key: tcell.KeyRune, Rune: 'h', Description: "Previous", Action: ActionPrevious},
		{Key: tcell.KeyRight, Label: "→", Description: "Next", Action: ActionNext},
		{Key: tcell.KeyRune, Rune: 'l', Description: "Next", Action: ActionNext},
		{Key: tcell.KeyRune, Rune: 's', Label: "s", Description: "Schema", Action: ActionToggleSchema},
	}
}

func ActionQuit(app *App) errorsx.Error {
	app.tviewApp.Stop()
	return nil
}

func ActionPrevious(app *App) errorsx.Error {
	err := app.cursor.Retreat()
	if err != nil {
		return err
	}

	return app.refresh()
}

func ActionNext(app *App) errorsx.Error {
	err := app.cursor.Advance()
	if err != nil {
		return err
	}

	return app.refresh()
}

func ActionToggleSchema(app *App) errorsx.Error {
	err := app.cursor.ToggleSchema()
	if err != nil {
		return err
	}

	return app.refresh()
}

type keyID struct {
	key tcell.Key
	r   rune
}

func newKeyID(key tcell.Key, r rune) keyID {
	if key != tcell.KeyRune {
		r = 0
	}

	return keyID{key, r}
}

func buildKeyMap(keyBindings []KeyBinding) (map[keyID]KeyBinding, errorsx.Error) {
	keyMap := make(map[keyID]KeyBinding)
	for _, keyBinding := range keyBindings {
		if keyBinding.Action == nil {
			return nil, errorsx.Errorf("key binding %q (%s) has no action", keyBinding.Label, keyBinding.Description)
		}

		id := newKeyID(keyBinding.Key, keyBinding.Rune)
		_, ok := keyMap[id]
		if ok {
			return nil, errorsx.Errorf("key %q (rune %q) is bound more than once", tcell.KeyNames[keyBinding.Key], keyBinding.Rune)
		}

		keyMap[id] = keyBinding
	}

	return keyMap, nil
}

// FooterText lists the labelled key bindings, e.g. " q  Quit   ←  Previous".
func FooterText(keyBindings []KeyBinding) string {
	var fragments []string
	for _, keyBinding := range keyBindings {
		if keyBinding.Label == "" {
			continue
		}

		fragments = append(fragments, fmt.Sprintf("[black:aqua] %s [-:-] %s", tview.Escape(keyBinding.Label), keyBinding.Description))
	}

	return strings.Join(fragments, "  ")
}
