package pqvrenderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/pqv-app/pqv"
	"github.com/rivo/tview"
)

const (
	rowTitle       = " Row "
	emptyFileTitle = " Row (file has no rows) "
	schemaTitle    = " Schema "
)

// App is the terminal UI: a status line, the current row (or schema), and a footer listing the keys.
type App struct {
	logger *logpkg.Logger
	cursor *pqv.RowCursor
	keyMap map[keyID]KeyBinding

	tviewApp    *tview.Application
	infoView    *tview.TextView
	contentView *tview.TextView
	footerView  *tview.TextView

	// err is the error that stopped the app, if any
	err errorsx.Error
}

func NewApp(logger *logpkg.Logger, cursor *pqv.RowCursor, keyBindings []KeyBinding) (*App, errorsx.Error) {
	keyMap, err := buildKeyMap(keyBindings)
	if err != nil {
		return nil, err
	}

	app := &App{
		logger: logger,
		cursor: cursor,
		keyMap: keyMap,
	}

	app.infoView = tview.NewTextView().SetDynamicColors(true)

	app.contentView = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	app.contentView.SetBorder(true).SetTitleAlign(tview.AlignLeft)

	app.footerView = tview.NewTextView().
		SetDynamicColors(true).
		SetText(FooterText(keyBindings))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(app.infoView, 1, 0, false).
		AddItem(app.contentView, 0, 1, true).
		AddItem(app.footerView, 1, 0, false)

	app.tviewApp = tview.NewApplication().
		SetRoot(layout, true).
		SetInputCapture(app.handleKey)

	err = app.refresh()
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run blocks until the user quits, or a row group fails to load.
func (app *App) Run() errorsx.Error {
	err := app.tviewApp.Run()
	if err != nil {
		return errorsx.Wrap(err)
	}

	return app.err
}

func (app *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	keyBinding, ok := app.keyMap[newKeyID(event.Key(), event.Rune())]
	if !ok {
		// not ours; let the focused view handle it (e.g. scrolling)
		return event
	}

	app.logger.Debug("key %q: %s", event.Name(), keyBinding.Description)

	err := keyBinding.Action(app)
	if err != nil {
		app.logger.Error("stopping after error: %s", err.Error())
		app.err = err
		app.tviewApp.Stop()
	}

	return nil
}

func (app *App) refresh() errorsx.Error {
	app.infoView.SetText(tview.Escape(app.cursor.StatusLine()))

	switch view := app.cursor.View().(type) {
	case pqv.RowView:
		text, ok, err := app.cursor.CurrentRow()
		if err != nil {
			return err
		}

		if !ok {
			app.contentView.SetTitle(emptyFileTitle)
			app.contentView.SetText("")
			break
		}

		app.contentView.SetTitle(rowTitle)
		app.contentView.SetText(FormatJSON(text))
	case pqv.SchemaView:
		app.contentView.SetTitle(schemaTitle)
		app.contentView.SetText(FormatYAML(view.Text))
	default:
		return errorsx.Errorf("unknown view type: %T", view)
	}

	app.contentView.ScrollToBeginning()

	return nil
}
