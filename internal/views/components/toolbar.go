package components

import (
	"apk-editor/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the APK picker and the workflow action buttons
type Toolbar struct {
	container *fyne.Container

	apkLabel        *widget.Label
	selectButton    *widget.Button
	apkOnlyCheck    *widget.Check
	decompileButton *widget.Button
	recompileButton *widget.Button
	assetButtons    map[models.AssetKind]*widget.Button

	// Event handlers
	selectHandler    func()
	decompileHandler func()
	recompileHandler func()
	assetHandler     func(models.AssetKind)
}

var assetButtonLabels = map[models.AssetKind]string{
	models.AssetFile:  "Add Files",
	models.AssetImage: "Add Images",
	models.AssetAudio: "Add Audio",
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	t := &Toolbar{
		assetButtons: make(map[models.AssetKind]*widget.Button, len(models.AssetKinds)),
	}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents() {
	t.apkLabel = widget.NewLabel("No APK Selected")
	t.apkLabel.Alignment = fyne.TextAlignCenter
	t.apkLabel.Importance = widget.LowImportance

	t.selectButton = widget.NewButton("Select APK", func() {
		if t.selectHandler != nil {
			t.selectHandler()
		}
	})
	t.selectButton.Importance = widget.SuccessImportance

	t.apkOnlyCheck = widget.NewCheck("Only .apk files", nil)
	t.apkOnlyCheck.SetChecked(true)

	t.decompileButton = widget.NewButton("Decompile & Edit", func() {
		if t.decompileHandler != nil {
			t.decompileHandler()
		}
	})
	t.decompileButton.Importance = widget.HighImportance

	t.recompileButton = widget.NewButton("Recompile & Sign", func() {
		if t.recompileHandler != nil {
			t.recompileHandler()
		}
	})
	t.recompileButton.Importance = widget.WarningImportance

	for _, kind := range models.AssetKinds {
		kind := kind // per-iteration copy; go directive lowered to 1.21 for the local toolchain
		t.assetButtons[kind] = widget.NewButton(assetButtonLabels[kind], func() {
			if t.assetHandler != nil {
				t.assetHandler(kind)
			}
		})
	}

	t.SetActionsEnabled(false)
}

func (t *Toolbar) buildLayout() {
	assetRow := container.NewHBox()
	for _, kind := range models.AssetKinds {
		assetRow.Add(t.assetButtons[kind])
	}

	t.container = container.NewVBox(
		t.apkLabel,
		container.NewCenter(container.NewHBox(t.selectButton, t.apkOnlyCheck)),
		widget.NewSeparator(),
		container.NewCenter(container.NewHBox(t.decompileButton, t.recompileButton)),
		container.NewCenter(assetRow),
	)
}

func (t *Toolbar) SetSelectHandler(handler func()) {
	t.selectHandler = handler
}

func (t *Toolbar) SetDecompileHandler(handler func()) {
	t.decompileHandler = handler
}

func (t *Toolbar) SetRecompileHandler(handler func()) {
	t.recompileHandler = handler
}

func (t *Toolbar) SetAssetHandler(handler func(models.AssetKind)) {
	t.assetHandler = handler
}

// SetApkLabel shows the selected APK, dimmed when nothing is selected
func (t *Toolbar) SetApkLabel(text string, selected bool) {
	t.apkLabel.SetText(text)
	if selected {
		t.apkLabel.Importance = widget.MediumImportance
	} else {
		t.apkLabel.Importance = widget.LowImportance
	}
	t.apkLabel.Refresh()
}

// SetActionsEnabled toggles every button that depends on a selected APK
func (t *Toolbar) SetActionsEnabled(enabled bool) {
	buttons := []*widget.Button{t.decompileButton, t.recompileButton}
	for _, kind := range models.AssetKinds {
		buttons = append(buttons, t.assetButtons[kind])
	}

	for _, b := range buttons {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// ApkOnly reports whether the APK picker should filter on the .apk extension
func (t *Toolbar) ApkOnly() bool {
	return t.apkOnlyCheck.Checked
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
