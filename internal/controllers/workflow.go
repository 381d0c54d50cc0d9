package controllers

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"

	"apk-editor/internal/events"
	"apk-editor/internal/logger"
	"apk-editor/internal/models"
	"apk-editor/internal/services"
	"apk-editor/internal/toolchain"

	"github.com/dustin/go-humanize"
)

const (
	component = "Workflow"

	noApkLabel = "No APK Selected"
)

// Workspace performs the file-system side effects of each step
type Workspace interface {
	Decompile(apkPath string) (string, error)
	AddAsset(decompiledDir, src string) (*services.AssetCopy, error)
	Recompile(apkPath string) (string, error)
}

// WorkflowController owns the session state and turns each user action into
// a Result for the view. Actions are expected on the UI goroutine; the mutex
// only covers readers on other goroutines.
type WorkflowController struct {
	mu     sync.Mutex
	state  models.WorkflowState
	status string

	workspace Workspace
	planner   *toolchain.Planner
	events    events.Publisher
	logger    logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWorkflowController creates a controller with empty session state.
// planner, publisher and log may be nil.
func NewWorkflowController(ws Workspace, planner *toolchain.Planner, publisher events.Publisher, log logger.Logger) *WorkflowController {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkflowController{
		workspace: ws,
		planner:   planner,
		events:    publisher,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// State returns a copy of the session state
func (wc *WorkflowController) State() models.WorkflowState {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.state
}

// View returns the current view state without performing an action
func (wc *WorkflowController) View() ViewState {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.viewLocked()
}

// SelectApk records the picked path. An empty path means the picker was
// cancelled and clears the selection.
func (wc *WorkflowController) SelectApk(path string) Result {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if path == "" {
		wc.state.SelectedApkPath = ""
		wc.status = ""
		wc.logger.Info(component, "apk selection cleared", nil)
		wc.publish(events.ApkCleared, nil)
		return Result{View: wc.viewLocked()}
	}

	wc.state.SelectedApkPath = path
	wc.status = fmt.Sprintf("Ready to decompile %s", filepath.Base(path))

	wc.logger.Info(component, "apk selected", map[string]interface{}{
		"path": path,
	})
	wc.publish(events.ApkSelected, map[string]interface{}{"path": path})

	return Result{View: wc.viewLocked()}
}

// DecompileAndEdit creates the placeholder project next to the selected APK
func (wc *WorkflowController) DecompileAndEdit() Result {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if !wc.state.HasApk() {
		err := &models.PreconditionError{Action: "decompile", Reason: "no APK selected"}
		return wc.failLocked(err, Notice{Level: NoticeError, Title: "Error", Message: "Please select an APK first."})
	}

	apk := wc.state.SelectedApkPath
	if wc.planner != nil {
		dir := models.DecompiledDirFor(apk)
		wc.logPlan("decompile", wc.planner.Decompile(wc.ctx, apk, dir))
	}

	dir, err := wc.workspace.Decompile(apk)
	if err != nil {
		return wc.failLocked(err, Notice{
			Level:   NoticeError,
			Title:   "Decompilation Error",
			Message: fmt.Sprintf("Failed to decompile APK: %v", err),
		})
	}

	wc.state.DecompiledDirPath = dir
	wc.status = fmt.Sprintf("Simulating decompilation. Folder created at:\n%s", dir)

	wc.logger.Info(component, "decompilation simulated", map[string]interface{}{
		"apk": apk,
		"dir": dir,
	})
	wc.publish(events.Decompiled, map[string]interface{}{"path": dir})

	return Result{
		View: wc.viewLocked(),
		Notices: []Notice{{
			Level:   NoticeInfo,
			Title:   "Decompilation Complete",
			Message: fmt.Sprintf("Simulated decompilation finished. A folder has been created at:\n%s", dir),
		}},
	}
}

// BeginAddAsset checks whether an asset picker may be shown. When ok is false
// the returned Result carries the warning to display.
func (wc *WorkflowController) BeginAddAsset(kind models.AssetKind) (Result, bool) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if err := wc.assetPreconditionLocked(kind); err != nil {
		return wc.assetRejectionLocked(err), false
	}
	return Result{View: wc.viewLocked()}, true
}

// AddAsset copies src into the decompiled project's assets directory. An
// empty src means the picker was cancelled and nothing happens.
func (wc *WorkflowController) AddAsset(kind models.AssetKind, src string) Result {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if err := wc.assetPreconditionLocked(kind); err != nil {
		return wc.assetRejectionLocked(err)
	}

	if src == "" {
		wc.logger.Debug(component, "asset selection cancelled", map[string]interface{}{
			"kind": kind.String(),
		})
		return Result{View: wc.viewLocked()}
	}

	asset, err := wc.workspace.AddAsset(wc.state.DecompiledDirPath, src)
	if err != nil {
		return wc.failLocked(err, Notice{
			Level:   NoticeError,
			Title:   "Error",
			Message: fmt.Sprintf("Failed to add file: %v", err),
		})
	}

	name := filepath.Base(asset.Path)
	wc.status = fmt.Sprintf("Added %s: %s", kind, name)

	wc.logger.Info(component, "asset added", map[string]interface{}{
		"kind":   kind.String(),
		"source": src,
		"path":   asset.Path,
		"bytes":  asset.Size,
	})
	wc.publish(events.AssetAdded, map[string]interface{}{
		"kind": kind.String(),
		"path": asset.Path,
	})

	return Result{
		View: wc.viewLocked(),
		Notices: []Notice{{
			Level:   NoticeInfo,
			Title:   "Success",
			Message: fmt.Sprintf("%s (%s) successfully added to the simulated project.", name, humanize.Bytes(uint64(asset.Size))),
		}},
	}
}

// RecompileAndSign writes the placeholder output APK. It may be repeated and
// leaves the session state untouched.
func (wc *WorkflowController) RecompileAndSign() Result {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	warning := Notice{Level: NoticeWarning, Title: "Warning", Message: "Please decompile the APK and make your edits first."}
	if !wc.state.HasDecompiled() {
		err := &models.PreconditionError{Action: "recompile", Reason: "must decompile and edit first"}
		return wc.failLocked(err, warning)
	}
	if !wc.state.HasApk() {
		err := &models.PreconditionError{Action: "recompile", Reason: "no APK selected"}
		return wc.failLocked(err, Notice{Level: NoticeWarning, Title: "Warning", Message: "Please select an APK first."})
	}

	apk := wc.state.SelectedApkPath
	if wc.planner != nil {
		wc.logPlan("recompile", wc.planner.Recompile(wc.ctx, wc.state.DecompiledDirPath, models.RecompiledPathFor(apk)))
	}

	out, err := wc.workspace.Recompile(apk)
	if err != nil {
		return wc.failLocked(err, Notice{
			Level:   NoticeError,
			Title:   "Process Error",
			Message: fmt.Sprintf("Failed to recompile/sign APK: %v", err),
		})
	}

	wc.status = fmt.Sprintf("Final APK created at:\n%s", out)

	wc.logger.Info(component, "recompilation simulated", map[string]interface{}{
		"output": out,
	})
	wc.publish(events.Recompiled, map[string]interface{}{"path": out})

	return Result{
		View: wc.viewLocked(),
		Notices: []Notice{{
			Level:   NoticeInfo,
			Title:   "Process Complete",
			Message: fmt.Sprintf("Simulated recompilation and signing finished. The final APK is at:\n%s", out),
		}},
	}
}

// Shutdown releases the planning context
func (wc *WorkflowController) Shutdown() {
	wc.logger.Info(component, "workflow controller shutdown", map[string]interface{}{
		"state": wc.State().String(),
	})
	wc.cancel()
}

func (wc *WorkflowController) assetPreconditionLocked(kind models.AssetKind) error {
	if !kind.Valid() {
		return &models.PreconditionError{Action: "add asset", Reason: fmt.Sprintf("unknown asset kind %q", kind)}
	}
	if !wc.state.HasDecompiled() {
		return &models.PreconditionError{Action: "add asset", Reason: "must decompile first"}
	}
	return nil
}

func (wc *WorkflowController) assetRejectionLocked(err error) Result {
	return wc.failLocked(err, Notice{Level: NoticeWarning, Title: "Warning", Message: "Please decompile the APK first."})
}

func (wc *WorkflowController) failLocked(err error, notice Notice) Result {
	fields := map[string]interface{}{"state": wc.state.String()}

	var pre *models.PreconditionError
	if errors.As(err, &pre) {
		fields["action"] = pre.Action
		wc.logger.Warning(component, pre.Error(), fields)
	} else {
		wc.logger.Error(component, err, fields)
	}

	wc.publish(events.ActionFailed, map[string]interface{}{"error": err.Error()})

	return Result{View: wc.viewLocked(), Notices: []Notice{notice}, Err: err}
}

func (wc *WorkflowController) viewLocked() ViewState {
	view := ViewState{
		ApkLabel: noApkLabel,
		Status:   wc.status,
	}
	if wc.state.HasApk() {
		view.ApkLabel = fmt.Sprintf("Selected: %s", wc.state.ApkName())
		view.ApkSelected = true
		view.ActionsEnabled = true
	}
	return view
}

func (wc *WorkflowController) logPlan(step string, cmds []*exec.Cmd) {
	wc.logger.Debug(component, "external tools not invoked", map[string]interface{}{
		"step":     step,
		"commands": toolchain.Describe(cmds),
	})
}

func (wc *WorkflowController) publish(eventType string, data map[string]interface{}) {
	if wc.events == nil {
		return
	}
	wc.events.Publish(events.Event{Type: eventType, Data: data})
}
