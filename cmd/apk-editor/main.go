package main

import (
	"log"
	"os"
	"runtime"

	"apk-editor/internal/controllers"
	"apk-editor/internal/events"
	"apk-editor/internal/logger"
	"apk-editor/internal/services"
	"apk-editor/internal/shutdown"
	"apk-editor/internal/toolchain"
	"apk-editor/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/google/uuid"
)

const (
	AppName    = "Simple APK Editor UI"
	AppID      = "com.example.apkeditor"
	AppVersion = "1.0.0"

	WindowWidth  = 600
	WindowHeight = 400

	eventBufferSize = 64
	historyLimit    = 200
)

// Application wires the Fyne window to the workflow controller
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.WorkflowController
	view       *views.MainView
	bus        *events.Bus
	history    *events.History
	shutdown   *shutdown.Manager
}

func main() {
	application, err := NewApplication()
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}

// NewApplication creates and initializes the application
func NewApplication() (*Application, error) {
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := app.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	sessionID := uuid.NewString()
	appLogger := newLogger().WithSession(sessionID)

	appLogger.Info("Application", "starting application", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
	})

	bus := events.NewBus(eventBufferSize)
	bus.OnHandlerPanic(func(id string, r interface{}) {
		appLogger.Warning("EventBus", "event handler panicked", map[string]interface{}{
			"handler": id,
			"panic":   r,
		})
	})

	history := events.NewHistory(historyLimit)
	bus.Subscribe(events.AllEventTypes, history)
	bus.Subscribe(events.AllEventTypes, events.HandlerFunc{
		ID: "logger",
		Fn: func(e events.Event) {
			appLogger.Debug("EventBus", e.Type, e.Data)
		},
	})

	workspace := services.NewWorkspaceService(appLogger)
	controller := controllers.NewWorkflowController(workspace, toolchain.NewPlanner(), bus, appLogger)
	view := views.NewMainView(window, controller, appLogger)

	shutdownMgr := shutdown.NewManager(appLogger)
	shutdownMgr.Register("event bus", bus)
	shutdownMgr.Register("workflow controller", controller)

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		controller: controller,
		view:       view,
		bus:        bus,
		history:    history,
		shutdown:   shutdownMgr,
	}

	view.SetActivitySource(history.Summary)
	view.SetQuitHandler(application.requestClose)
	view.SetupMenus()
	application.setupWindowEvents()

	appLogger.Info("Application", "initialization complete", nil)
	return application, nil
}

// Run shows the window and blocks until the Fyne event loop exits
func (a *Application) Run() {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.view.Show()
	a.fyneApp.Run()

	a.shutdown.Shutdown()
	a.logger.Info("Application", "terminated", nil)
}

func (a *Application) setupWindowEvents() {
	a.window.SetCloseIntercept(a.requestClose)
}

func (a *Application) requestClose() {
	a.logger.Info("Application", "close requested", nil)

	a.view.ShowConfirm("Exit Application", "Are you sure you want to exit?", func(confirmed bool) {
		if !confirmed {
			return
		}
		a.shutdown.Shutdown()
		a.window.Close()
	})
}

// newLogger builds the console or JSON logger from LOG_LEVEL, DEBUG and
// APKEDITOR_JSON_LOGS.
func newLogger() *logger.ZerologAdapter {
	level := logger.ParseLevel(os.Getenv("LOG_LEVEL"), os.Getenv("DEBUG") == "1")

	if os.Getenv("APKEDITOR_JSON_LOGS") == "true" {
		return logger.NewZerolog(os.Stderr, level)
	}
	return logger.NewConsoleLogger(level)
}
