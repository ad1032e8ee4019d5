// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Event types for game use
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
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	Button uint8
}

// Input polls SDL and tracks action state across frames.
type Input struct {
	events []Event
	state  *State
}

// New creates a new input handler with the default bindings.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		state:  NewState(DefaultBindings()),
	}
}

// Update clears last frame's edges, polls SDL events and applies them.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.state.EndFrame()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e, ok := convert(event)
		if !ok {
			continue
		}
		i.events = append(i.events, e)
		i.state.Apply(e)
		if e.Type == EventQuit {
			return true
		}
	}

	return false
}

func convert(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
			return ev, true
		case sdl.KEYUP:
			ev.Type = EventKeyUp
			return ev, true
		}

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			RelX:   int(e.XRel),
			RelY:   int(e.YRel),
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
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// State returns the tracked action state.
func (i *Input) State() *State {
	return i.state
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

// SetRelativeMouse captures the mouse for mouse look.
func SetRelativeMouse(on bool) {
	sdl.SetRelativeMouseMode(on)
}
