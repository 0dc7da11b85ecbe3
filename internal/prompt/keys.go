package prompt

import "unicode/utf8"

// Event is what a key press did to a sequence.
type Event int

const (
	EventNone Event = iota
	EventInput
	EventAdvanced
	EventCompleted
	EventCancelled
	EventInvalid
)

// HandleKey applies a key named the way bubbletea names key presses
// ("enter", "esc", "backspace", "tab", or a single character).
// Physical keys and the on-screen keypad go through the same path.
func (s *Sequence) HandleKey(key string) (*Completed, Event) {
	switch key {
	case "enter":
		c, err := s.Submit()
		if err != nil {
			return nil, EventInvalid
		}

		if c != nil {
			return c, EventCompleted
		}

		return nil, EventAdvanced
	case "esc":
		s.Cancel()
		return nil, EventCancelled
	case "backspace":
		s.Backspace()
		return nil, EventInput
	case "tab":
		if s.ToggleMode() {
			return nil, EventInput
		}

		return nil, EventInvalid
	case "space":
		key = " "
	}

	if utf8.RuneCountInString(key) != 1 {
		return nil, EventNone
	}

	r, _ := utf8.DecodeRuneInString(key)
	if s.Type(r) {
		return nil, EventInput
	}

	return nil, EventInvalid
}
