package controllers

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"apk-editor/internal/events"
	"apk-editor/internal/models"
	"apk-editor/internal/services"
	"apk-editor/internal/toolchain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type failingWorkspace struct {
	err error
}

func (f failingWorkspace) Decompile(string) (string, error) { return "", f.err }
func (f failingWorkspace) AddAsset(string, string) (*services.AssetCopy, error) {
	return nil, f.err
}
func (f failingWorkspace) Recompile(string) (string, error) { return "", f.err }

func newController(t *testing.T) (*WorkflowController, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	wc := NewWorkflowController(services.NewWorkspaceService(nil), toolchain.NewPlanner(), pub, nil)
	t.Cleanup(wc.Shutdown)
	return wc, pub
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func requirePrecondition(t *testing.T, res Result) *models.PreconditionError {
	t.Helper()
	var pre *models.PreconditionError
	require.ErrorAs(t, res.Err, &pre)
	require.Len(t, res.Notices, 1)
	return pre
}

func TestInitialView(t *testing.T) {
	wc, _ := newController(t)

	view := wc.View()
	assert.Equal(t, "No APK Selected", view.ApkLabel)
	assert.False(t, view.ApkSelected)
	assert.False(t, view.ActionsEnabled)
	assert.Empty(t, view.Status)
}

func TestSelectApkAndCancel(t *testing.T) {
	wc, pub := newController(t)

	res := wc.SelectApk("/data/app.apk")
	require.NoError(t, res.Err)
	assert.Equal(t, "Selected: app.apk", res.View.ApkLabel)
	assert.True(t, res.View.ActionsEnabled)
	assert.Equal(t, "Ready to decompile app.apk", res.View.Status)
	assert.Empty(t, res.Notices)
	assert.Equal(t, "/data/app.apk", wc.State().SelectedApkPath)

	res = wc.SelectApk("")
	require.NoError(t, res.Err)
	assert.Equal(t, "No APK Selected", res.View.ApkLabel)
	assert.False(t, res.View.ActionsEnabled)
	assert.Empty(t, res.View.Status)
	assert.False(t, wc.State().HasApk())

	assert.Equal(t, []string{events.ApkSelected, events.ApkCleared}, pub.types())
}

func TestDecompileWithoutApk(t *testing.T) {
	wc, pub := newController(t)
	dir := t.TempDir()

	res := wc.DecompileAndEdit()
	pre := requirePrecondition(t, res)
	assert.Equal(t, "decompile", pre.Action)
	assert.Equal(t, NoticeError, res.Notices[0].Level)
	assert.False(t, wc.State().HasDecompiled())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, []string{events.ActionFailed}, pub.types())
}

func TestDecompileDerivesDirectory(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	apk := filepath.Join(dir, "app.apk")
	writeFile(t, apk, []byte("PK"))

	wc.SelectApk(apk)
	res := wc.DecompileAndEdit()
	require.NoError(t, res.Err)

	want := filepath.Join(filepath.Dir(apk), "decompiled_app")
	assert.Equal(t, want, wc.State().DecompiledDirPath)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, NoticeInfo, res.Notices[0].Level)
	assert.Contains(t, res.Notices[0].Message, want)
	assert.Contains(t, res.View.Status, want)
}

func TestDecompileTwiceIsIdempotent(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	apk := filepath.Join(dir, "app.apk")
	wc.SelectApk(apk)

	require.NoError(t, wc.DecompileAndEdit().Err)
	project := wc.State().DecompiledDirPath
	marker := filepath.Join(project, "marker")
	writeFile(t, marker, []byte("x"))

	require.NoError(t, wc.DecompileAndEdit().Err)
	assert.FileExists(t, marker)

	got, err := os.ReadFile(filepath.Join(project, "AndroidManifest.xml"))
	require.NoError(t, err)
	assert.Equal(t, models.ManifestPlaceholder, string(got))
}

func TestDecompileFailureKeepsState(t *testing.T) {
	pub := &recordingPublisher{}
	wc := NewWorkflowController(failingWorkspace{err: &models.IOError{Op: "create directory", Path: "/ro", Err: fs.ErrPermission}}, nil, pub, nil)
	defer wc.Shutdown()

	wc.SelectApk("/ro/app.apk")
	res := wc.DecompileAndEdit()

	var ioErr *models.IOError
	require.ErrorAs(t, res.Err, &ioErr)
	assert.True(t, errors.Is(res.Err, fs.ErrPermission))
	assert.Equal(t, NoticeError, res.Notices[0].Level)
	assert.False(t, wc.State().HasDecompiled())
	assert.Equal(t, "Ready to decompile app.apk", res.View.Status)
}

func TestAddAssetRequiresDecompile(t *testing.T) {
	wc, _ := newController(t)
	wc.SelectApk("/data/app.apk")

	res, ok := wc.BeginAddAsset(models.AssetImage)
	assert.False(t, ok)
	pre := requirePrecondition(t, res)
	assert.Equal(t, "must decompile first", pre.Reason)
	assert.Equal(t, NoticeWarning, res.Notices[0].Level)

	res = wc.AddAsset(models.AssetImage, "/data/logo.png")
	requirePrecondition(t, res)
}

func TestAddAssetRejectsUnknownKind(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	wc.SelectApk(filepath.Join(dir, "app.apk"))
	require.NoError(t, wc.DecompileAndEdit().Err)

	_, ok := wc.BeginAddAsset(models.AssetKind("video"))
	assert.False(t, ok)
}

func TestAddAssetCancelled(t *testing.T) {
	wc, pub := newController(t)
	dir := t.TempDir()
	wc.SelectApk(filepath.Join(dir, "app.apk"))
	require.NoError(t, wc.DecompileAndEdit().Err)

	_, ok := wc.BeginAddAsset(models.AssetAudio)
	require.True(t, ok)

	res := wc.AddAsset(models.AssetAudio, "")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Notices)
	assert.NoDirExists(t, filepath.Join(dir, "decompiled_app", "assets"))
	assert.NotContains(t, pub.types(), events.AssetAdded)
}

func TestAddAssetDuplicateKeepsOriginal(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	wc.SelectApk(filepath.Join(dir, "app.apk"))
	require.NoError(t, wc.DecompileAndEdit().Err)

	first := filepath.Join(dir, "one", "clip.mp3")
	second := filepath.Join(dir, "two", "clip.mp3")
	require.NoError(t, os.MkdirAll(filepath.Dir(first), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(second), 0o755))
	writeFile(t, first, []byte("original"))
	writeFile(t, second, []byte("replacement"))

	res := wc.AddAsset(models.AssetAudio, first)
	require.NoError(t, res.Err)
	assert.Equal(t, "Added audio: clip.mp3", res.View.Status)

	res = wc.AddAsset(models.AssetFile, second)
	var ioErr *models.IOError
	require.ErrorAs(t, res.Err, &ioErr)
	assert.Equal(t, NoticeError, res.Notices[0].Level)
	assert.Equal(t, "Added audio: clip.mp3", res.View.Status)

	got, err := os.ReadFile(filepath.Join(dir, "decompiled_app", "assets", "clip.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestRecompileRequiresDecompile(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	wc.SelectApk(filepath.Join(dir, "app.apk"))

	res := wc.RecompileAndSign()
	pre := requirePrecondition(t, res)
	assert.Equal(t, "must decompile and edit first", pre.Reason)
	assert.Equal(t, NoticeWarning, res.Notices[0].Level)
	assert.NoFileExists(t, filepath.Join(dir, "recompiled_and_signed.apk"))
}

func TestRecompileAfterSelectionCleared(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	wc.SelectApk(filepath.Join(dir, "app.apk"))
	require.NoError(t, wc.DecompileAndEdit().Err)

	wc.SelectApk("")
	assert.True(t, wc.State().HasDecompiled())

	res := wc.RecompileAndSign()
	pre := requirePrecondition(t, res)
	assert.Equal(t, "no APK selected", pre.Reason)
}

func TestRecompileIsRepeatable(t *testing.T) {
	wc, _ := newController(t)
	dir := t.TempDir()
	wc.SelectApk(filepath.Join(dir, "app.apk"))
	require.NoError(t, wc.DecompileAndEdit().Err)
	before := wc.State()

	out := filepath.Join(dir, "recompiled_and_signed.apk")
	for _, kind := range []models.AssetKind{models.AssetImage, models.AssetAudio} {
		src := filepath.Join(dir, kind.String()+".bin")
		writeFile(t, src, []byte(kind))
		require.NoError(t, wc.AddAsset(kind, src).Err)

		res := wc.RecompileAndSign()
		require.NoError(t, res.Err)
		assert.Contains(t, res.Notices[0].Message, out)

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, models.RecompiledPlaceholder, string(got))
	}
	assert.Equal(t, before, wc.State())
}

func TestEndToEnd(t *testing.T) {
	wc, pub := newController(t)
	dir := t.TempDir()
	apk := filepath.Join(dir, "app.apk")
	logo := filepath.Join(dir, "logo.png")
	logoBytes := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x01}
	writeFile(t, apk, []byte("PK\x03\x04"))
	writeFile(t, logo, logoBytes)

	require.NoError(t, wc.SelectApk(apk).Err)

	res := wc.DecompileAndEdit()
	require.NoError(t, res.Err)
	project := filepath.Join(dir, "decompiled_app")
	assert.FileExists(t, filepath.Join(project, "AndroidManifest.xml"))

	_, ok := wc.BeginAddAsset(models.AssetImage)
	require.True(t, ok)
	res = wc.AddAsset(models.AssetImage, logo)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Notices[0].Message, "logo.png")

	copied, err := os.ReadFile(filepath.Join(project, "assets", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, logoBytes, copied)

	res = wc.RecompileAndSign()
	require.NoError(t, res.Err)
	out, err := os.ReadFile(filepath.Join(dir, "recompiled_and_signed.apk"))
	require.NoError(t, err)
	assert.Equal(t, models.RecompiledPlaceholder, string(out))
	assert.Equal(t, "Final APK created at:\n"+filepath.Join(dir, "recompiled_and_signed.apk"), res.View.Status)

	assert.Equal(t, []string{
		events.ApkSelected,
		events.Decompiled,
		events.AssetAdded,
		events.Recompiled,
	}, pub.types())
}
