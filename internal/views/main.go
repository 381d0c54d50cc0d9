package views

import (
	"errors"
	"fmt"

	"apk-editor/internal/controllers"
	"apk-editor/internal/logger"
	"apk-editor/internal/models"
	"apk-editor/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	component = "MainView"

	// the APK picker opens at the file system root
	pickerRoot = "/"
)

var apkExtensions = []string{".apk"}

// MainView is the single application window. It turns button presses into
// controller calls and renders the returned Result.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	statusBar     *components.StatusBar

	controller *controllers.WorkflowController
	logger     logger.Logger

	activitySource func() string
	quitHandler    func()
}

// NewMainView creates the main view bound to controller
func NewMainView(window fyne.Window, controller *controllers.WorkflowController, log logger.Logger) *MainView {
	if log == nil {
		log = logger.NoOpLogger{}
	}

	mv := &MainView{
		window:     window,
		controller: controller,
		logger:     log,
		toolbar:    components.NewToolbar(),
		statusBar:  components.NewStatusBar(),
	}

	mv.buildLayout()
	mv.setupEventHandlers()
	mv.render(controller.View())

	return mv
}

func (mv *MainView) buildLayout() {
	title := widget.NewLabelWithStyle("APK Editor (Conceptual UI)", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	mv.mainContainer = container.NewBorder(
		title,
		mv.statusBar.GetContainer(),
		nil,
		nil,
		container.NewPadded(mv.toolbar.GetContainer()),
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetSelectHandler(mv.handleSelectApk)
	mv.toolbar.SetDecompileHandler(func() {
		mv.apply(mv.controller.DecompileAndEdit())
	})
	mv.toolbar.SetRecompileHandler(func() {
		mv.apply(mv.controller.RecompileAndSign())
	})
	mv.toolbar.SetAssetHandler(mv.handleAddAsset)
}

// SetActivitySource sets the provider behind Session > Activity
func (mv *MainView) SetActivitySource(source func() string) {
	mv.activitySource = source
}

// SetQuitHandler sets the handler behind File > Quit
func (mv *MainView) SetQuitHandler(handler func()) {
	mv.quitHandler = handler
}

// SetupMenus installs the main menu
func (mv *MainView) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Select APK...", mv.handleSelectApk),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if mv.quitHandler != nil {
				mv.quitHandler()
			}
		}),
	)

	sessionMenu := fyne.NewMenu("Session",
		fyne.NewMenuItem("Activity", func() {
			summary := "No activity yet."
			if mv.activitySource != nil {
				summary = mv.activitySource()
			}
			mv.ShowInfo("Session Activity", summary)
		}),
	)

	mv.window.SetMainMenu(fyne.NewMainMenu(fileMenu, sessionMenu))
}

func (mv *MainView) handleSelectApk() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.logger.Error(component, err, map[string]interface{}{"dialog": "select apk"})
			mv.ShowError("File Selection Error", err)
			return
		}
		mv.apply(mv.controller.SelectApk(readerPath(reader)))
	}, mv.window)

	if mv.toolbar.ApkOnly() {
		d.SetFilter(storage.NewExtensionFileFilter(apkExtensions))
	}
	mv.seedLocation(d, pickerRoot)
	d.Resize(fyne.NewSize(800, 600))
	d.Show()
}

func (mv *MainView) handleAddAsset(kind models.AssetKind) {
	res, ok := mv.controller.BeginAddAsset(kind)
	if !ok {
		mv.apply(res)
		return
	}

	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.logger.Error(component, err, map[string]interface{}{"dialog": "add " + kind.String()})
			mv.ShowError("File Selection Error", err)
			return
		}
		mv.apply(mv.controller.AddAsset(kind, readerPath(reader)))
	}, mv.window)

	d.SetConfirmText(fmt.Sprintf("Add %s", kind))
	d.Resize(fyne.NewSize(800, 600))
	d.Show()
}

func (mv *MainView) seedLocation(d *dialog.FileDialog, path string) {
	lister, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		mv.logger.Debug(component, "picker location unavailable", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	d.SetLocation(lister)
}

// readerPath closes reader and returns its local path, or "" when the
// dialog was cancelled.
func readerPath(reader fyne.URIReadCloser) string {
	if reader == nil {
		return ""
	}
	defer reader.Close()
	return reader.URI().Path()
}

func (mv *MainView) apply(res controllers.Result) {
	mv.render(res.View)
	for _, notice := range res.Notices {
		mv.showNotice(notice)
	}
}

func (mv *MainView) render(view controllers.ViewState) {
	mv.toolbar.SetApkLabel(view.ApkLabel, view.ApkSelected)
	mv.toolbar.SetActionsEnabled(view.ActionsEnabled)
	mv.statusBar.SetStatus(view.Status)
}

func (mv *MainView) showNotice(n controllers.Notice) {
	switch n.Level {
	case controllers.NoticeWarning:
		mv.showIconDialog(n.Title, n.Message, theme.WarningIcon())
	case controllers.NoticeError:
		mv.showIconDialog(n.Title, n.Message, theme.ErrorIcon())
	default:
		mv.ShowInfo(n.Title, n.Message)
	}
}

func (mv *MainView) showIconDialog(title, message string, icon fyne.Resource) {
	content := container.NewHBox(widget.NewIcon(icon), widget.NewLabel(message))
	dialog.ShowCustom(title, "OK", content, mv.window)
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	if err == nil {
		err = errors.New(title)
	}
	mv.showIconDialog(title, err.Error(), theme.ErrorIcon())
}

// ShowInfo displays an information dialog
func (mv *MainView) ShowInfo(title, message string) {
	dialog.ShowInformation(title, message, mv.window)
}

// ShowConfirm displays a confirmation dialog
func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	dialog.ShowConfirm(title, message, callback, mv.window)
}

// Status returns the text currently shown in the status bar
func (mv *MainView) Status() string {
	return mv.statusBar.GetStatus()
}

// Show displays the view
func (mv *MainView) Show() {
	fyne.Do(func() {
		mv.window.Show()
	})
}

// GetWindow returns the main window
func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}
