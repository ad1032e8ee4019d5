package input

import "github.com/veandco/go-sdl2/sdl"

// Action is a game control independent of the physical key.
type Action int

const (
	ActionForward Action = iota
	ActionBack
	ActionLeft
	ActionRight
	ActionJump
	ActionSprint
	ActionQuit
	ActionToggleMouse
	ActionWireframe
	actionCount
)

// Bindings maps scancodes to actions. Several keys may share an action.
type Bindings map[sdl.Scancode]Action

// DefaultBindings returns WASD movement, space to jump, either shift to
// sprint, escape to quit, tab to release the mouse and F3 for wireframe.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.SCANCODE_W:      ActionForward,
		sdl.SCANCODE_UP:     ActionForward,
		sdl.SCANCODE_S:      ActionBack,
		sdl.SCANCODE_DOWN:   ActionBack,
		sdl.SCANCODE_A:      ActionLeft,
		sdl.SCANCODE_LEFT:   ActionLeft,
		sdl.SCANCODE_D:      ActionRight,
		sdl.SCANCODE_RIGHT:  ActionRight,
		sdl.SCANCODE_SPACE:  ActionJump,
		sdl.SCANCODE_LSHIFT: ActionSprint,
		sdl.SCANCODE_RSHIFT: ActionSprint,
		sdl.SCANCODE_ESCAPE: ActionQuit,
		sdl.SCANCODE_TAB:    ActionToggleMouse,
		sdl.SCANCODE_F3:     ActionWireframe,
	}
}

// State tracks held actions, per-frame press and release edges, and
// accumulated relative mouse motion. It has no SDL dependency beyond
// scancodes so it can be driven directly.
type State struct {
	bindings Bindings

	held     [actionCount]int // keys currently holding each action
	pressed  [actionCount]bool
	released [actionCount]bool

	mouseDX, mouseDY int
}

// NewState creates a state using the given bindings.
func NewState(b Bindings) *State {
	return &State{bindings: b}
}

// Apply folds one event into the state. Key repeats are ignored.
func (s *State) Apply(e Event) {
	switch e.Type {
	case EventKeyDown:
		a, ok := s.bindings[e.Key]
		if !ok || e.Repeat {
			return
		}
		if s.held[a] == 0 {
			s.pressed[a] = true
		}
		s.held[a]++

	case EventKeyUp:
		a, ok := s.bindings[e.Key]
		if !ok || s.held[a] == 0 {
			return
		}
		s.held[a]--
		if s.held[a] == 0 {
			s.released[a] = true
		}

	case EventMouseMove:
		s.mouseDX += e.RelX
		s.mouseDY += e.RelY
	}
}

// EndFrame clears edges and mouse motion.
func (s *State) EndFrame() {
	s.pressed = [actionCount]bool{}
	s.released = [actionCount]bool{}
	s.mouseDX, s.mouseDY = 0, 0
}

// Held reports whether the action is held down.
func (s *State) Held(a Action) bool { return s.held[a] > 0 }

// Pressed reports whether the action went down this frame.
func (s *State) Pressed(a Action) bool { return s.pressed[a] }

// Released reports whether the action went up this frame.
func (s *State) Released(a Action) bool { return s.released[a] }

// Axes returns forward and right input in [-1, 1]. Opposing keys cancel.
func (s *State) Axes() (forward, right float32) {
	if s.Held(ActionForward) {
		forward++
	}
	if s.Held(ActionBack) {
		forward--
	}
	if s.Held(ActionRight) {
		right++
	}
	if s.Held(ActionLeft) {
		right--
	}
	return forward, right
}

// MouseDelta returns relative mouse motion since the last EndFrame.
func (s *State) MouseDelta() (dx, dy int) {
	return s.mouseDX, s.mouseDY
}
