package culture

import "context"

type contextKey string

func (c contextKey) String() string {
	return "culture/" + string(c)
}

const ctxKeyState = contextKey("stateKey")

// State is the culture pair of a single execution context.
// It is owned by the goroutine running that context and is not safe for concurrent use;
// hand work to other goroutines through Manager.Go, Manager.Group or SubmitJob instead.
type State struct {
	current   *Culture
	currentUI *Culture
}

func NewState(current, currentUI *Culture) *State {
	return &State{current: current, currentUI: currentUI}
}

func (s *State) Current() *Culture {
	return s.current
}

// SetCurrent replaces the current culture; the UI culture is left untouched. Nil is ignored.
func (s *State) SetCurrent(c *Culture) {
	if c == nil {
		return
	}
	s.current = c
}

func (s *State) CurrentUI() *Culture {
	return s.currentUI
}

// SetCurrentUI replaces the current UI culture; the culture is left untouched. Nil is ignored.
func (s *State) SetCurrentUI(c *Culture) {
	if c == nil {
		return
	}
	s.currentUI = c
}

// ToContext attaches state to the supplied context.
func ToContext(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKeyState, s)
}

// FromContext extracts the culture state from the supplied context if any exist.
func FromContext(ctx context.Context) *State {
	s, ok := ctx.Value(ctxKeyState).(*State)
	if !ok {
		return nil
	}
	return s
}
