// Package scanner classifies a stream of key events as either barcode-scanner
// burst input or ordinary human typing, using only inter-keystroke timing.
package scanner

import (
	"time"
	"unicode"
	"unicode/utf8"
)

// KeyEnter is the terminator key emitted by keyboard-wedge scanners.
const KeyEnter = "Enter"

const (
	defaultBurstWindow   = 50 * time.Millisecond
	defaultIdleTimeout   = 100 * time.Millisecond
	defaultMinCodeLength = 3
)

// KeyEvent is a single key press. Key holds one printable character, or a
// named key such as "Enter".
type KeyEvent struct {
	Key string
	At  time.Time
}

// State is the timing state carried between events: the accumulating scan
// buffer and the arrival time of the previous event. The zero value is a
// valid initial state.
type State struct {
	Buffer      string
	LastEventAt time.Time
}

// Config tunes the classifier. Zero fields fall back to defaults.
type Config struct {
	// BurstWindow is the largest inter-keystroke gap still considered
	// scanner input rather than human typing.
	BurstWindow time.Duration
	// IdleTimeout discards a partial buffer that never saw a terminator.
	IdleTimeout time.Duration
	// MinCodeLength is the shortest buffer emitted as a scanned code.
	MinCodeLength int
}

func (c Config) withDefaults() Config {
	if c.BurstWindow <= 0 {
		c.BurstWindow = defaultBurstWindow
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.MinCodeLength <= 0 {
		c.MinCodeLength = defaultMinCodeLength
	}
	return c
}

type ActionKind int

const (
	// ActionNone means the event needs no handling beyond normal input.
	ActionNone ActionKind = iota
	// ActionScan means a complete code was scanned; Code holds it.
	ActionScan
	// ActionFocusSearch means a human started typing outside the search
	// field; Seed holds the character that should land there.
	ActionFocusSearch
)

// Action is the classifier's per-event decision.
type Action struct {
	Kind ActionKind
	Code string
	Seed string
}

// Classify consumes one key event and returns the next state plus the action
// the caller should take. searchFocused reports whether the designated search
// input currently has focus; slow typing into it is left alone.
//
// Events must be delivered in arrival order; the timing decision depends on
// the gap since the previous event.
func Classify(cfg Config, st State, ev KeyEvent, searchFocused bool) (State, Action) {
	cfg = cfg.withDefaults()

	delta := ev.At.Sub(st.LastEventAt)
	if st.Buffer != "" && delta >= cfg.IdleTimeout {
		// Partial scan abandoned: no terminator arrived in time.
		st.Buffer = ""
	}

	next := State{Buffer: st.Buffer, LastEventAt: ev.At}

	if !st.LastEventAt.IsZero() && delta < cfg.BurstWindow {
		// Burst: implausibly fast for a human.
		switch {
		case ev.Key == KeyEnter:
			code := next.Buffer
			next.Buffer = ""
			if len(code) >= cfg.MinCodeLength {
				return next, Action{Kind: ActionScan, Code: code}
			}
			return next, Action{}
		case printable(ev.Key):
			next.Buffer += ev.Key
			return next, Action{}
		default:
			// Unsupported keys do not contribute, but the timing
			// state machine keeps running.
			return next, Action{}
		}
	}

	// At or above the burst window: start of a new sequence.
	next.Buffer = ""
	if !printable(ev.Key) {
		return next, Action{}
	}
	if searchFocused {
		// Ordinary typing into the search field.
		return next, Action{}
	}
	// A keystroke with nowhere sensible to land. Seed the buffer (this may
	// turn out to be the first character of a scan) and steer focus to the
	// search field so a human sees their typing. Heuristic, not a
	// guarantee.
	next.Buffer = ev.Key
	return next, Action{Kind: ActionFocusSearch, Seed: ev.Key}
}

// Stream owns classifier state for callers that feed events imperatively.
type Stream struct {
	cfg Config
	st  State
}

func NewStream(cfg Config) *Stream {
	return &Stream{cfg: cfg.withDefaults()}
}

// Feed classifies one event, advancing the stream's state.
func (s *Stream) Feed(ev KeyEvent, searchFocused bool) Action {
	st, action := Classify(s.cfg, s.st, ev, searchFocused)
	s.st = st
	return action
}

// Reset discards any buffered state.
func (s *Stream) Reset() {
	s.st = State{}
}

func printable(key string) bool {
	if utf8.RuneCountInString(key) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(key)
	return unicode.IsPrint(r)
}
