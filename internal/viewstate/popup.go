package viewstate

import (
	"fmt"
	"math"
	"strconv"
)

// Popup zoom bounds.
const (
	PopupMinZoom = 0.5
	PopupMaxZoom = 5.0
)

// KeyAction is the outcome of a key press in the popup.
type KeyAction int

const (
	KeyIgnored KeyAction = iota
	KeyHandled
	KeyClose
)

// Popup is the transform state of the full-size frame viewer.
type Popup struct {
	Zoom     float64
	Rotation int
	PanX     float64
	PanY     float64

	dragging     bool
	lastX, lastY float64
}

// NewPopup returns an untransformed popup.
func NewPopup() *Popup {
	return &Popup{Zoom: 1}
}

func (p *Popup) ZoomIn() {
	if p.Zoom < PopupMaxZoom {
		p.Zoom = math.Min(PopupMaxZoom, p.Zoom+ZoomStep)
	}
}

// ZoomOut zooms out one step; panning is dropped once the image no longer
// exceeds its frame.
func (p *Popup) ZoomOut() {
	if p.Zoom > PopupMinZoom {
		p.Zoom = math.Max(PopupMinZoom, p.Zoom-ZoomStep)
		if p.Zoom <= 1 {
			p.PanX, p.PanY = 0, 0
		}
	}
}

func (p *Popup) ResetZoom() {
	p.Zoom = 1
	p.PanX, p.PanY = 0, 0
}

func (p *Popup) RotateLeft()    { p.Rotation = (p.Rotation - 90) % 360 }
func (p *Popup) RotateRight()   { p.Rotation = (p.Rotation + 90) % 360 }
func (p *Popup) ResetRotation() { p.Rotation = 0 }
func (p *Popup) ResetPan()      { p.PanX, p.PanY = 0, 0 }

func (p *Popup) ResetAll() {
	p.ResetZoom()
	p.ResetRotation()
}

// Wheel zooms in on upward and out on downward motion.
func (p *Popup) Wheel(deltaY float64) {
	if deltaY < 0 {
		p.ZoomIn()
	} else {
		p.ZoomOut()
	}
}

// BeginDrag starts panning at (x, y). Panning is only possible when zoomed in.
func (p *Popup) BeginDrag(x, y float64) bool {
	if p.Zoom <= 1 {
		return false
	}
	p.dragging = true
	p.lastX, p.lastY = x, y
	return true
}

// Drag pans by the pointer movement since the last position.
func (p *Popup) Drag(x, y float64) {
	if !p.dragging || p.Zoom <= 1 {
		return
	}
	p.PanX += x - p.lastX
	p.PanY += y - p.lastY
	p.lastX, p.lastY = x, y
}

func (p *Popup) EndDrag() { p.dragging = false }

// HandleKey applies the keyboard shortcuts.
func (p *Popup) HandleKey(key string) KeyAction {
	switch key {
	case "Escape":
		return KeyClose
	case "+", "=":
		p.ZoomIn()
	case "-":
		p.ZoomOut()
	case "r", "R":
		p.RotateRight()
	case "0":
		p.ResetAll()
	default:
		return KeyIgnored
	}
	return KeyHandled
}

// Transform renders the state as a CSS transform.
func (p *Popup) Transform() string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s) rotate(%ddeg)",
		num(p.PanX), num(p.PanY), num(p.Zoom), p.Rotation)
}

// DownloadName is the suggested file name when saving a frame image.
func DownloadName(frameNumber int, sequenceName string) string {
	return fmt.Sprintf("frame_%d_%s.jpg", frameNumber, sequenceName)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
