package models

import (
	"fmt"
	"path/filepath"
)

const (
	DecompiledDirName  = "decompiled_app"
	AssetsDirName      = "assets"
	ManifestFileName   = "AndroidManifest.xml"
	RecompiledFileName = "recompiled_and_signed.apk"

	ManifestPlaceholder   = "<!-- This is a placeholder for the decompiled manifest. -->"
	RecompiledPlaceholder = "This is a placeholder for the recompiled and signed APK."
)

// AssetKind labels an added asset. It only affects notification text.
type AssetKind string

const (
	AssetFile  AssetKind = "file"
	AssetImage AssetKind = "image"
	AssetAudio AssetKind = "audio"
)

// AssetKinds lists the kinds in toolbar order
var AssetKinds = []AssetKind{AssetFile, AssetImage, AssetAudio}

func (k AssetKind) Valid() bool {
	switch k {
	case AssetFile, AssetImage, AssetAudio:
		return true
	}
	return false
}

func (k AssetKind) String() string {
	return string(k)
}

// WorkflowState holds the two session paths. Empty means absent.
type WorkflowState struct {
	SelectedApkPath   string
	DecompiledDirPath string
}

func (s WorkflowState) HasApk() bool {
	return s.SelectedApkPath != ""
}

func (s WorkflowState) HasDecompiled() bool {
	return s.DecompiledDirPath != ""
}

// ApkDir is the directory that receives every generated artifact
func (s WorkflowState) ApkDir() string {
	if !s.HasApk() {
		return ""
	}
	return filepath.Dir(s.SelectedApkPath)
}

// ApkName is the base name of the selected file, or empty
func (s WorkflowState) ApkName() string {
	if !s.HasApk() {
		return ""
	}
	return filepath.Base(s.SelectedApkPath)
}

// DecompiledDirFor derives the placeholder project directory for an APK path
func DecompiledDirFor(apkPath string) string {
	return filepath.Join(filepath.Dir(apkPath), DecompiledDirName)
}

// RecompiledPathFor derives the placeholder output APK path
func RecompiledPathFor(apkPath string) string {
	return filepath.Join(filepath.Dir(apkPath), RecompiledFileName)
}

// AssetsDirFor derives the asset directory inside a decompiled project
func AssetsDirFor(decompiledDir string) string {
	return filepath.Join(decompiledDir, AssetsDirName)
}

func (s WorkflowState) String() string {
	return fmt.Sprintf("apk=%q decompiled=%q", s.SelectedApkPath, s.DecompiledDirPath)
}
