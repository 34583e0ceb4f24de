// Package overlay renders the screen-covering protection backdrop. The
// window is purely visual: while a session is active every input event is
// suppressed at the capture point, so the close control and timer are drawn
// from guardian events rather than widget callbacks.
package overlay

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"pawlock/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// Close control geometry, inset from the top-right corner.
const (
	closeControlSize   = float32(44)
	closeControlMargin = float32(20)
)

const (
	defaultScreenWidth  = float32(1920)
	defaultScreenHeight = float32(1080)
)

// Config defines overlay visuals.
type Config struct {
	Opacity   float64
	HideTimer bool
	Message   string
}

// Window manages the overlay UI.
type Window struct {
	app           fyne.App
	window        fyne.Window
	config        Config
	background    *canvas.Rectangle
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	timerLabel    *canvas.Text
	closeCircle   *canvas.Circle
	crossFirst    *canvas.Line
	crossSecond   *canvas.Line
	progressTrack *canvas.Rectangle
	progressFill  *canvas.Rectangle
	visible       bool

	// cachedSize mirrors the canvas size so CloseRegion can be called from
	// the guardian's goroutine without touching the canvas off the UI thread.
	sizeMu     sync.Mutex
	cachedSize fyne.Size
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a new overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("PawLock")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(backdropColor(config.Opacity))

	titleLabel := canvas.NewText("PawLock", color.NRGBA{R: 255, G: 255, B: 255, A: 230})
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 28

	subtitleLabel := canvas.NewText(config.Message, color.NRGBA{R: 220, G: 220, B: 220, A: 200})
	subtitleLabel.Alignment = fyne.TextAlignCenter
	subtitleLabel.TextSize = 15

	timerLabel := canvas.NewText("", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true}
	timerLabel.TextSize = 20

	closeCircle := canvas.NewCircle(color.NRGBA{R: 51, G: 51, B: 51, A: 180})
	closeCircle.StrokeColor = color.NRGBA{R: 200, G: 200, B: 200, A: 120}
	closeCircle.StrokeWidth = 2

	crossColor := color.NRGBA{R: 230, G: 230, B: 230, A: 220}
	crossFirst := canvas.NewLine(crossColor)
	crossFirst.StrokeWidth = 3
	crossSecond := canvas.NewLine(crossColor)
	crossSecond.StrokeWidth = 3

	progressTrack := canvas.NewRectangle(color.NRGBA{R: 80, G: 80, B: 80, A: 160})
	progressFill := canvas.NewRectangle(color.NRGBA{R: 102, G: 204, B: 102, A: 255})
	progressFill.Hide()

	content := container.New(&shieldLayout{},
		background, titleLabel, subtitleLabel, timerLabel,
		closeCircle, crossFirst, crossSecond, progressTrack, progressFill)
	window.SetContent(content)

	overlay := &Window{
		app:           app,
		window:        window,
		config:        config,
		background:    background,
		titleLabel:    titleLabel,
		subtitleLabel: subtitleLabel,
		timerLabel:    timerLabel,
		closeCircle:   closeCircle,
		crossFirst:    crossFirst,
		crossSecond:   crossSecond,
		progressTrack: progressTrack,
		progressFill:  progressFill,
	}
	overlay.applyTimerVisibility()
	return overlay
}

// Show presents the fullscreen overlay for a new session.
func (overlay *Window) Show(remaining time.Duration) {
	overlay.visible = true
	overlay.setRemainingUnsafe(remaining)
	overlay.setHoldProgressUnsafe(0)
	overlay.applyTimerVisibility()
	overlay.window.SetFullScreen(true)
	overlay.window.Show()
	overlay.window.RequestFocus()
	overlay.applyNativeOpacity(overlay.config.Opacity)
	overlay.refreshCanvasSize()
}

// Hide closes the overlay.
func (overlay *Window) Hide() {
	overlay.visible = false
	overlay.window.SetFullScreen(false)
	overlay.window.Hide()
}

// SetRemaining updates the countdown label.
func (overlay *Window) SetRemaining(remaining time.Duration) {
	fyne.Do(func() {
		overlay.refreshCanvasSize()
		overlay.setRemainingUnsafe(remaining)
	})
}

// SetHoldProgress updates the close control's hold indicator with a
// fraction in [0,1].
func (overlay *Window) SetHoldProgress(fraction float64) {
	fyne.Do(func() {
		overlay.refreshCanvasSize()
		overlay.setHoldProgressUnsafe(fraction)
	})
}

// FlashWarning highlights the countdown when it enters its final minute.
func (overlay *Window) FlashWarning() {
	fyne.Do(func() {
		overlay.timerLabel.Color = color.NRGBA{R: 255, G: 120, B: 80, A: 255}
		overlay.timerLabel.Refresh()
	})
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = backdropColor(config.Opacity)
	overlay.subtitleLabel.Text = config.Message
	overlay.applyTimerVisibility()
	canvas.Refresh(overlay.background)
	overlay.subtitleLabel.Refresh()
	if overlay.visible {
		overlay.applyNativeOpacity(config.Opacity)
	}
}

// CloseRegion reports the close control's rectangle in screen coordinates,
// for the guardian's hold gesture. The overlay covers the screen, so window
// coordinates and screen coordinates coincide. Safe to call from any
// goroutine: it reads the size cached by the last UI-thread update.
func (overlay *Window) CloseRegion() model.Rect {
	size := overlay.canvasSize()
	return model.Rect{
		X: float64(size.Width - closeControlSize - closeControlMargin),
		Y: float64(closeControlMargin),
		W: float64(closeControlSize),
		H: float64(closeControlSize),
	}
}

// refreshCanvasSize must run on the fyne UI thread.
func (overlay *Window) refreshCanvasSize() {
	size := overlay.window.Canvas().Size()
	overlay.sizeMu.Lock()
	overlay.cachedSize = size
	overlay.sizeMu.Unlock()
}

func (overlay *Window) canvasSize() fyne.Size {
	overlay.sizeMu.Lock()
	size := overlay.cachedSize
	overlay.sizeMu.Unlock()
	if size.Width < 1 || size.Height < 1 {
		return fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	}
	return size
}

func (overlay *Window) setRemainingUnsafe(remaining time.Duration) {
	if overlay.config.HideTimer || remaining <= 0 {
		overlay.timerLabel.Text = ""
	} else {
		overlay.timerLabel.Text = formatDuration(remaining)
	}
	overlay.timerLabel.Refresh()
}

func (overlay *Window) setHoldProgressUnsafe(fraction float64) {
	if fraction <= 0 {
		overlay.progressFill.Hide()
		overlay.progressFill.Refresh()
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	trackSize := overlay.progressTrack.Size()
	trackPosition := overlay.progressTrack.Position()
	overlay.progressFill.Show()
	overlay.progressFill.Move(trackPosition)
	overlay.progressFill.Resize(fyne.NewSize(trackSize.Width*float32(fraction), trackSize.Height))
	overlay.progressFill.Refresh()
}

func (overlay *Window) applyTimerVisibility() {
	if overlay.config.HideTimer {
		overlay.timerLabel.Hide()
		return
	}
	overlay.timerLabel.Show()
}

func backdropColor(opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	// Dark blue-black, matching the session backdrop tone.
	return color.NRGBA{R: 26, G: 26, B: 38, A: uint8(opacity * 255)}
}

func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value.Seconds())
	hours := seconds / 3600
	minutes := seconds % 3600 / 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// shieldLayout centers the text stack and pins the close control to the
// top-right corner with the fixed inset.
type shieldLayout struct{}

func (layout *shieldLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 9 {
		return
	}
	background := objects[0]
	title := objects[1]
	subtitle := objects[2]
	timer := objects[3]
	circle := objects[4]
	crossFirst := objects[5]
	crossSecond := objects[6]
	progressTrack := objects[7]
	progressFill := objects[8]

	background.Move(fyne.NewPos(0, 0))
	background.Resize(size)

	titleSize := title.MinSize()
	subtitleSize := subtitle.MinSize()
	timerSize := timer.MinSize()
	stackHeight := titleSize.Height + 8 + subtitleSize.Height + 16 + timerSize.Height
	top := (size.Height - stackHeight) / 2

	title.Move(fyne.NewPos(0, top))
	title.Resize(fyne.NewSize(size.Width, titleSize.Height))

	subtitleY := top + titleSize.Height + 8
	subtitle.Move(fyne.NewPos(0, subtitleY))
	subtitle.Resize(fyne.NewSize(size.Width, subtitleSize.Height))

	timerY := subtitleY + subtitleSize.Height + 16
	timer.Move(fyne.NewPos(0, timerY))
	timer.Resize(fyne.NewSize(size.Width, timerSize.Height))

	circleX := size.Width - closeControlSize - closeControlMargin
	circleY := closeControlMargin
	circle.Move(fyne.NewPos(circleX, circleY))
	circle.Resize(fyne.NewSize(closeControlSize, closeControlSize))

	inset := closeControlSize * 0.3
	crossFirst.Move(fyne.NewPos(circleX+inset, circleY+inset))
	crossFirst.Resize(fyne.NewSize(closeControlSize-inset*2, closeControlSize-inset*2))
	if line, ok := crossFirst.(*canvas.Line); ok {
		line.Position1 = fyne.NewPos(circleX+inset, circleY+inset)
		line.Position2 = fyne.NewPos(circleX+closeControlSize-inset, circleY+closeControlSize-inset)
	}
	if line, ok := crossSecond.(*canvas.Line); ok {
		line.Position1 = fyne.NewPos(circleX+closeControlSize-inset, circleY+inset)
		line.Position2 = fyne.NewPos(circleX+inset, circleY+closeControlSize-inset)
	}

	trackWidth := closeControlSize + closeControlMargin*2
	trackY := circleY + closeControlSize + 8
	progressTrack.Move(fyne.NewPos(size.Width-trackWidth-4, trackY))
	progressTrack.Resize(fyne.NewSize(trackWidth, 4))

	fillSize := progressFill.Size()
	progressFill.Move(progressTrack.Position())
	progressFill.Resize(fyne.NewSize(fillSize.Width, 4))
}

func (layout *shieldLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(320, 240)
}
