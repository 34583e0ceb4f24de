package preferences

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pawlock/internal/core/keycombo"
	"pawlock/internal/core/model"
)

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  Settings
	onSave    func(Settings)
	exitKey   *widget.Entry
	keyHint   *widget.Label
	timer     *widget.Entry
	hideTimer *widget.Check
	opacity   *widget.Slider
	chime     *widget.Check
	autostart *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("PawLock Settings")

	exitKey := widget.NewEntry()
	exitKey.SetText(settings.ExitKey)
	keyHint := widget.NewLabel("")
	keyHint.Wrapping = fyne.TextWrapWord

	timer := widget.NewEntry()
	timer.SetText(settings.Timer)
	timer.SetPlaceHolder("none (e.g. 30m, 2h, 1h30m)")

	hideTimer := widget.NewCheck("Hide countdown on overlay", nil)
	hideTimer.SetChecked(settings.HideTimer)

	opacity := widget.NewSlider(0.05, 1.0)
	opacity.Value = settings.Opacity
	opacity.Step = 0.05

	chime := widget.NewCheck("Play warning chime", nil)
	chime.SetChecked(settings.Chime)

	autostart := widget.NewCheck("Launch at login", nil)
	autostart.SetChecked(settings.Autostart)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Protection", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Unlock combination"),
		exitKey,
		keyHint,
		widget.NewLabel("Auto-exit timer"),
		timer,
		hideTimer,
		widget.NewLabel("Overlay opacity"),
		opacity,
		chime,
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 460))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs := &Window{
		window:    window,
		settings:  settings,
		onSave:    onSave,
		exitKey:   exitKey,
		keyHint:   keyHint,
		timer:     timer,
		hideTimer: hideTimer,
		opacity:   opacity,
		chime:     chime,
		autostart: autostart,
	}

	exitKey.OnChanged = func(string) {
		prefs.refreshKeyHint()
	}
	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}
	prefs.refreshKeyHint()

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.exitKey.SetText(settings.ExitKey)
	prefs.timer.SetText(settings.Timer)
	prefs.hideTimer.SetChecked(settings.HideTimer)
	prefs.opacity.Value = settings.Opacity
	prefs.opacity.Refresh()
	prefs.chime.SetChecked(settings.Chime)
	prefs.autostart.SetChecked(settings.Autostart)
	prefs.refreshKeyHint()
}

func (prefs *Window) refreshKeyHint() {
	combo, err := keycombo.Parse(prefs.exitKey.Text)
	if err != nil {
		prefs.keyHint.SetText(err.Error())
		return
	}
	if warnings := combo.Warnings(); len(warnings) > 0 {
		prefs.keyHint.SetText("Warning: " + warnings[0])
		return
	}
	prefs.keyHint.SetText(fmt.Sprintf("Unlock with %s", combo))
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	combo, err := keycombo.Parse(prefs.exitKey.Text)
	if err != nil {
		prefs.keyHint.SetText(err.Error())
		return
	}
	settings.ExitKey = combo.String()

	if timerText := prefs.timer.Text; timerText == "" {
		settings.Timer = ""
	} else {
		value, err := model.ParseTimer(timerText)
		if err != nil {
			prefs.keyHint.SetText(err.Error())
			return
		}
		if value < model.MinTimer || value > model.MaxTimer {
			prefs.keyHint.SetText("timer out of range: use 1m to 24h")
			return
		}
		settings.Timer = model.FormatTimer(value)
	}

	settings.HideTimer = prefs.hideTimer.Checked
	settings.Opacity = prefs.opacity.Value
	settings.Chime = prefs.chime.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}
