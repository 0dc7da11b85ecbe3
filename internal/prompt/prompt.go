// Package prompt sequences the short keypad inputs collected before a privileged
// till action. A Sequence only collects values; the caller performs the backend
// call with the Completed result and reports the outcome through Resolve.
package prompt

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput = errors.New("input required")
	ErrNotActive  = errors.New("sequence is not collecting input")
)

// Kind describes what a step collects.
type Kind int

const (
	KindNumeric Kind = iota
	KindCurrency
	KindPassword
	KindText
)

// Mode is the current character admission mode of a step.
type Mode int

const (
	ModeNumeric Mode = iota
	ModeAlpha
)

func (m Mode) String() string {
	if m == ModeAlpha {
		return "ABC"
	}

	return "123"
}

// Step is one input surface of a sequence.
type Step struct {
	Key         string
	Label       string
	Kind        Kind
	AllowSpaces bool
	// Validate runs on submit after the empty check.
	Validate func(string) error
}

// Masked reports whether the input is rendered hidden.
func (s Step) Masked() bool {
	return s.Kind == KindPassword
}

// Toggleable reports whether the operator may switch between numeric and alpha entry.
func (s Step) Toggleable() bool {
	return s.Kind == KindPassword || s.Kind == KindText
}

func (s Step) initialMode() Mode {
	if s.Kind == KindText {
		return ModeAlpha
	}

	return ModeNumeric
}

// Action names the privileged operation a sequence feeds.
type Action string

// State of a sequence.
type State int

const (
	StateCollecting State = iota
	// StateSubmitting means every step was collected and the caller's handler is running.
	StateSubmitting
	StateDone
	StateCancelled
)

// Completed is the typed result of a fully collected sequence.
type Completed struct {
	Action Action
	keys   []string
	values []string
}

// Value returns the raw string collected for the step with the given key.
func (c Completed) Value(key string) string {
	for i, k := range c.keys {
		if k == key {
			return c.values[i]
		}
	}

	return ""
}

// Values returns the collected strings in step order.
func (c Completed) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)

	return out
}

// Sequence collects its steps strictly in order.
type Sequence struct {
	action Action
	steps  []Step

	idx    int
	values []string
	input  []rune
	mode   Mode
	state  State
	err    string
}

// New creates a sequence positioned on its first step. It panics without steps.
func New(action Action, steps ...Step) *Sequence {
	if len(steps) == 0 {
		panic("prompt: sequence needs at least one step")
	}

	s := &Sequence{action: action, steps: steps}
	s.Reset()

	return s
}

func (s *Sequence) Action() Action { return s.action }
func (s *Sequence) State() State   { return s.state }
func (s *Sequence) Index() int     { return s.idx }
func (s *Sequence) Len() int       { return len(s.steps) }
func (s *Sequence) Mode() Mode     { return s.mode }
func (s *Sequence) Err() string    { return s.err }
func (s *Sequence) Current() Step  { return s.steps[s.idx] }
func (s *Sequence) Input() string  { return string(s.input) }

// Open reports whether the sequence still owns its dialog.
func (s *Sequence) Open() bool {
	return s.state == StateCollecting || s.state == StateSubmitting
}

// Display is the input as it should be rendered, masked for password steps.
func (s *Sequence) Display() string {
	if s.Current().Masked() {
		masked := make([]rune, len(s.input))
		for i := range masked {
			masked[i] = '•'
		}

		return string(masked)
	}

	return string(s.input)
}

// Type offers one character to the current step. It returns false when the
// character is not admitted in the current mode.
func (s *Sequence) Type(r rune) bool {
	if s.state != StateCollecting {
		return false
	}

	admitted, ok := Admit(s.Current(), s.mode, string(s.input), r)
	if !ok {
		return false
	}

	s.input = append(s.input, admitted)

	return true
}

func (s *Sequence) Backspace() {
	if s.state != StateCollecting || len(s.input) == 0 {
		return
	}

	s.input = s.input[:len(s.input)-1]
}

// ToggleMode switches between numeric and alpha entry on steps that allow it.
func (s *Sequence) ToggleMode() bool {
	if s.state != StateCollecting || !s.Current().Toggleable() {
		return false
	}

	if s.mode == ModeNumeric {
		s.mode = ModeAlpha
	} else {
		s.mode = ModeNumeric
	}

	return true
}

// Submit stores the current input and advances. On the last step it returns the
// completed values and moves to StateSubmitting; otherwise it returns nil.
func (s *Sequence) Submit() (*Completed, error) {
	if s.state != StateCollecting {
		return nil, ErrNotActive
	}

	value := string(s.input)
	if value == "" {
		s.err = fmt.Sprintf("%s: %s", s.Current().Label, ErrEmptyInput)
		return nil, ErrEmptyInput
	}

	if v := s.Current().Validate; v != nil {
		if err := v(value); err != nil {
			s.err = err.Error()
			return nil, err
		}
	}

	s.values = append(s.values, value)
	s.err = ""

	if s.idx < len(s.steps)-1 {
		s.idx++
		s.input = nil
		s.mode = s.Current().initialMode()

		return nil, nil
	}

	s.state = StateSubmitting

	c := &Completed{Action: s.action, values: append([]string(nil), s.values...)}
	for _, st := range s.steps {
		c.keys = append(c.keys, st.Key)
	}

	return c, nil
}

// Resolve reports the handler outcome for a submitted sequence.
// A failure returns the sequence to its first step with msg shown inline.
func (s *Sequence) Resolve(err error, msg string) {
	if s.state != StateSubmitting {
		return
	}

	if err == nil {
		s.state = StateDone
		s.clear()

		return
	}

	s.Reject(msg)
}

// Reject discards collected values and restarts at the first step with an error message.
func (s *Sequence) Reject(msg string) {
	s.Reset()
	s.err = msg
}

// Cancel aborts the sequence and discards partial input.
func (s *Sequence) Cancel() {
	if s.state == StateDone {
		return
	}

	s.clear()
	s.state = StateCancelled
}

// Reset reopens the sequence at its first step with nothing collected.
func (s *Sequence) Reset() {
	s.clear()
	s.idx = 0
	s.mode = s.steps[0].initialMode()
	s.state = StateCollecting
}

func (s *Sequence) clear() {
	s.values = nil
	s.input = nil
	s.err = ""
}
