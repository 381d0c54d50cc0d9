package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"apk-editor/internal/logger"
	"apk-editor/internal/models"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// AssetCopy describes a file placed into the assets directory
type AssetCopy struct {
	Source string
	Path   string
	Size   int64
}

// WorkspaceService performs the placeholder file-system side effects of the
// workflow. Every failure is returned as *models.IOError.
type WorkspaceService struct {
	logger logger.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(log logger.Logger) *WorkspaceService {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &WorkspaceService{logger: log}
}

// Decompile creates the decompiled project directory next to apkPath (reusing
// it when present) and writes the placeholder manifest into it.
func (ws *WorkspaceService) Decompile(apkPath string) (string, error) {
	dir := models.DecompiledDirFor(apkPath)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", &models.IOError{Op: "create directory", Path: dir, Err: err}
	}

	manifest := filepath.Join(dir, models.ManifestFileName)
	if err := os.WriteFile(manifest, []byte(models.ManifestPlaceholder), filePerm); err != nil {
		return "", &models.IOError{Op: "write manifest", Path: manifest, Err: err}
	}

	ws.logger.Debug("Workspace", "placeholder manifest written", map[string]interface{}{
		"path": manifest,
	})
	return dir, nil
}

// AddAsset copies src into decompiledDir/assets under its own base name.
// An existing file with that name is never overwritten.
func (ws *WorkspaceService) AddAsset(decompiledDir, src string) (*AssetCopy, error) {
	assetsDir := models.AssetsDirFor(decompiledDir)
	if err := os.MkdirAll(assetsDir, dirPerm); err != nil {
		return nil, &models.IOError{Op: "create directory", Path: assetsDir, Err: err}
	}

	dst := filepath.Join(assetsDir, filepath.Base(src))
	size, err := copyExclusive(src, dst)
	if err != nil {
		return nil, err
	}

	ws.logger.Debug("Workspace", "asset copied", map[string]interface{}{
		"source": src,
		"path":   dst,
		"bytes":  size,
	})
	return &AssetCopy{Source: src, Path: dst, Size: size}, nil
}

// Recompile writes the placeholder output APK next to apkPath, replacing any
// earlier output.
func (ws *WorkspaceService) Recompile(apkPath string) (string, error) {
	out := models.RecompiledPathFor(apkPath)
	if err := os.WriteFile(out, []byte(models.RecompiledPlaceholder), filePerm); err != nil {
		return "", &models.IOError{Op: "write apk", Path: out, Err: err}
	}

	ws.logger.Debug("Workspace", "placeholder apk written", map[string]interface{}{
		"path": out,
	})
	return out, nil
}

func copyExclusive(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, &models.IOError{Op: "open source", Path: src, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, &models.IOError{Op: "stat source", Path: src, Err: err}
	}
	if info.IsDir() {
		return 0, &models.IOError{Op: "open source", Path: src, Err: fmt.Errorf("is a directory")}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		return 0, &models.IOError{Op: "create asset", Path: dst, Err: err}
	}

	written, err := io.Copy(out, in)
	if err == nil {
		err = out.Close()
	} else {
		_ = out.Close()
	}
	if err != nil {
		// dst was created by this call, so removing it cannot touch an earlier asset
		_ = os.Remove(dst)
		return 0, &models.IOError{Op: "copy asset", Path: dst, Err: err}
	}
	return written, nil
}
