// Package input tracks which keys are held, for backends that only
// deliver events as well as those that can poll.
package input

import (
	"sync"
	"time"
)

// Key names a key the demo reacts to. Names match ultraviolet's
// key strings.
type Key string

const (
	KeyLeft   Key = "left"
	KeyRight  Key = "right"
	KeyA      Key = "a"
	KeyD      Key = "d"
	Key1      Key = "1"
	Key2      Key = "2"
	Key3      Key = "3"
	KeyB      Key = "b"
	KeyR      Key = "r"
	KeyX      Key = "x"
	KeyEscape Key = "escape"
)

// Keys lists every key in the order backends should check them.
var Keys = []Key{KeyLeft, KeyRight, KeyA, KeyD, Key1, Key2, Key3, KeyB, KeyR, KeyX, KeyEscape}

// Poller is what the scene reads each frame.
type Poller interface {
	// Pressed reports whether k is held.
	Pressed(k Key) bool
	// JustPressed reports whether k went down since the last call, and
	// clears that edge.
	JustPressed(k Key) bool
}

// DefaultHoldWindow is how long a key counts as held after its last
// press or repeat when no release arrives. It covers typical terminal
// auto-repeat gaps.
const DefaultHoldWindow = 600 * time.Millisecond

type keyInfo struct {
	down bool
	last time.Time
	edge bool
}

// KeyState is a map of currently pressed keys fed by press and release
// events. It is safe for concurrent use; an event goroutine writes while
// the frame loop reads.
type KeyState struct {
	mu   sync.Mutex
	keys map[Key]*keyInfo
	hold time.Duration
	now  func() time.Time
}

// NewKeyState returns an empty KeyState. A non-positive hold disables
// expiry, for backends that reliably report releases.
func NewKeyState(hold time.Duration) *KeyState {
	return &KeyState{
		keys: make(map[Key]*keyInfo),
		hold: hold,
		now:  time.Now,
	}
}

func (s *KeyState) info(k Key) *keyInfo {
	ki, ok := s.keys[k]
	if !ok {
		ki = &keyInfo{}
		s.keys[k] = ki
	}
	return ki
}

// Press records a press or an auto-repeat of k.
func (s *KeyState) Press(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ki := s.info(k)
	if !ki.down || s.expired(ki) {
		ki.edge = true
	}
	ki.down = true
	ki.last = s.now()
}

// Release records that k went up.
func (s *KeyState) Release(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info(k).down = false
}

// Set records the polled state of k. A transition to down counts as a
// press.
func (s *KeyState) Set(k Key, down bool) {
	if down {
		s.mu.Lock()
		ki := s.info(k)
		if ki.down && !s.expired(ki) {
			ki.last = s.now()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.Press(k)
		return
	}
	s.Release(k)
}

// Reset releases every key and drops pending edges.
func (s *KeyState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.keys)
}

func (s *KeyState) expired(ki *keyInfo) bool {
	return s.hold > 0 && s.now().Sub(ki.last) > s.hold
}

// Pressed reports whether k is down and its hold window has not lapsed.
func (s *KeyState) Pressed(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ki, ok := s.keys[k]
	if !ok || !ki.down {
		return false
	}
	if s.expired(ki) {
		ki.down = false
		return false
	}
	return true
}

// JustPressed reports and clears the press edge of k.
func (s *KeyState) JustPressed(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ki, ok := s.keys[k]
	if !ok || !ki.edge {
		return false
	}
	ki.edge = false
	return true
}
