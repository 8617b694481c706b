package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"runtime"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/pqv-app/pqv"
	"github.com/jamesrr39/pqv-app/pqvdal"
	"github.com/jamesrr39/pqv-app/pqvrenderer"
	"github.com/pkg/profile"
	"gopkg.in/alecthomas/kingpin.v2"
)

type options struct {
	filePath      string
	verbose       bool
	logFilePath   string
	parallelism   int64
	shouldProfile bool
	printSchema   bool
	printRow      int64
	printRowSet   bool
}

func main() {
	opts := new(options)

	kingpin.MustParse(newCommandLine(opts).Parse(os.Args[1:]))

	err := run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %q\nStack trace:\n%s\n", err.Error(), err.Stack())
		os.Exit(1)
	}
}

func newCommandLine(opts *options) *kingpin.Application {
	app := kingpin.New("pqv", "view a parquet file row by row")

	app.Arg("file", "parquet file to view").Required().StringVar(&opts.filePath)
	app.Flag("verbose", "verbose logging").Short('v').BoolVar(&opts.verbose)
	app.Flag("log-file", "file to append logs to. By default, logs are discarded while the viewer is open").StringVar(&opts.logFilePath)
	app.Flag("parallelism", "amount of goroutines used to decode a row group").Default(fmt.Sprintf("%d", runtime.NumCPU())).Int64Var(&opts.parallelism)
	app.Flag("profile", "write a CPU profile of the session to a temporary directory").BoolVar(&opts.shouldProfile)
	app.Flag("schema", "print the schema and exit").BoolVar(&opts.printSchema)
	// actions only run for flags given on the command line
	app.Flag("row", "print the row at this position (starting at 1) and exit").Action(func(*kingpin.ParseContext) error {
		opts.printRowSet = true
		return nil
	}).Int64Var(&opts.printRow)

	return app
}

func isInteractive(opts *options) bool {
	return !opts.printSchema && !opts.printRowSet
}

func createLogger(opts *options) (*logpkg.Logger, io.Closer, errorsx.Error) {
	logLevel := logpkg.LogLevelInfo
	if opts.verbose {
		logLevel = logpkg.LogLevelDebug
	}

	if opts.logFilePath != "" {
		logFile, err := os.OpenFile(opts.logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, errorsx.Wrap(err, "logFilePath", opts.logFilePath)
		}

		return logpkg.NewLogger(logFile, logLevel), logFile, nil
	}

	if isInteractive(opts) {
		// the terminal belongs to the viewer
		return logpkg.NewLogger(ioutil.Discard, logLevel), ioutil.NopCloser(nil), nil
	}

	return logpkg.NewLogger(os.Stderr, logLevel), ioutil.NopCloser(nil), nil
}

func run(opts *options) errorsx.Error {
	var err error

	if opts.parallelism < 1 {
		return errorsx.Errorf("parallelism must be at least 1, but got %d", opts.parallelism)
	}

	logger, logCloser, err := createLogger(opts)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer logCloser.Close()

	if opts.shouldProfile {
		profileDir, err := ioutil.TempDir("", "pqv-profile-")
		if err != nil {
			return errorsx.Wrap(err)
		}
		logger.Info("writing CPU profile to %q", profileDir)
		defer profile.Start(profile.ProfilePath(profileDir), profile.CPUProfile, profile.Quiet).Stop()
	}

	parquetFile, err := pqvdal.OpenParquetFile(logger, gofs.NewOsFs(), opts.filePath, opts.parallelism)
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer parquetFile.Close()

	if opts.printSchema {
		schemaText, err := parquetFile.Schema().Text()
		if err != nil {
			return errorsx.Wrap(err)
		}

		fmt.Println(schemaText)
		return nil
	}

	cursor, err := pqv.NewRowCursor(parquetFile)
	if err != nil {
		return errorsx.Wrap(err)
	}

	if opts.printRowSet {
		return printRow(os.Stdout, cursor, opts.printRow)
	}

	app, err := pqvrenderer.NewApp(logger, cursor, pqvrenderer.DefaultKeyBindings())
	if err != nil {
		return errorsx.Wrap(err)
	}

	err = app.Run()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}

func printRow(w io.Writer, cursor *pqv.RowCursor, rowNumber int64) errorsx.Error {
	if rowNumber < 1 {
		return errorsx.Errorf("row numbers start at 1, but got %d", rowNumber)
	}

	err := cursor.Seek(rowNumber - 1)
	if err != nil {
		return errorsx.Wrap(err)
	}

	if cursor.Position().RowIndex != rowNumber-1 {
		return errorsx.Errorf("row %d requested, but the file only has %d rows", rowNumber, cursor.Position().RowIndex+1)
	}

	text, ok, err := cursor.CurrentRow()
	if err != nil {
		return errorsx.Wrap(err)
	}

	if !ok {
		return errorsx.Errorf("file has no rows")
	}

	_, writeErr := fmt.Fprintln(w, text)
	if writeErr != nil {
		return errorsx.Wrap(writeErr)
	}

	return nil
}
