// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	DeltaX int
	DeltaY int
	Button uint8
}

// Input handles all input processing.
type Input struct {
	events []Event

	dragging      bool
	dragX, dragY  float32
	wheel         float32
	width, height int
	resized       bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events. Returns true if the application should quit.
func (i *Input) Update() bool {
	i.begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.handle(event) {
			return true
		}
	}
	return false
}

// begin drops the events of the previous poll. Motion keeps accumulating
// until Flush.
func (i *Input) begin() {
	i.events = i.events[:0]
}

// Flush clears the accumulated drag, wheel and resize state. Call it after
// a frame has consumed them.
func (i *Input) Flush() {
	i.dragX, i.dragY, i.wheel = 0, 0, 0
	i.resized = false
}

// handle records one SDL event and reports whether it requests quitting.
func (i *Input) handle(event sdl.Event) bool {
	e, ok := translate(event)
	if !ok {
		return false
	}
	i.events = append(i.events, e)

	switch e.Type {
	case EventQuit:
		return true
	case EventKeyDown:
		return e.Key == sdl.SCANCODE_ESCAPE
	case EventWindowResize:
		i.width, i.height, i.resized = e.Width, e.Height, true
	case EventMouseDown:
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = true
		}
	case EventMouseUp:
		if e.Button == sdl.BUTTON_LEFT {
			i.dragging = false
		}
	case EventMouseMove:
		if i.dragging {
			i.dragX += float32(e.DeltaX)
			i.dragY += float32(e.DeltaY)
		}
	case EventMouseWheel:
		i.wheel += float32(e.DeltaY)
	}
	return false
}

// translate converts an SDL event into an Event.
func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		switch e.Type {
		case sdl.KEYDOWN:
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true
		case sdl.KEYUP:
			return Event{Type: EventKeyUp, Key: e.Keysym.Scancode}, true
		}

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DeltaX: int(e.XRel),
			DeltaY: int(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		ev := Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
		switch e.Type {
		case sdl.MOUSEBUTTONDOWN:
			ev.Type = EventMouseDown
			return ev, true
		case sdl.MOUSEBUTTONUP:
			ev.Type = EventMouseUp
			return ev, true
		}

	case *sdl.MouseWheelEvent:
		return Event{Type: EventMouseWheel, DeltaX: int(e.X), DeltaY: int(e.Y)}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Drag returns the mouse movement with the left button held since the last
// Flush.
func (i *Input) Drag() (dx, dy float32) {
	return i.dragX, i.dragY
}

// Wheel returns the vertical scroll since the last Flush.
func (i *Input) Wheel() float32 {
	return i.wheel
}

// Resized returns the latest window size if it changed since the last Flush.
func (i *Input) Resized() (width, height int, ok bool) {
	return i.width, i.height, i.resized
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
