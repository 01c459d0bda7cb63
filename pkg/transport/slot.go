package transport

import (
	"sync"
	"sync/atomic"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// SlotToken identifies the event handed out by EventSlots.Next.
type SlotToken struct {
	touchDown bool
	seq       uint64
}

type eventSlot struct {
	ev  protocol.Event
	seq uint64
}

// EventSlots holds at most two pending events: the general slot and a
// dedicated touch-down slot. A touch-down arriving while the general slot
// is occupied goes to the touch-down slot, so it is never overwritten by
// an unrelated event before the application drains it. Any other event
// overwrites the general slot.
//
// Put is called from the notification context; Next and Done from the
// application context. An empty slot has kind EventNone.
type EventSlots struct {
	lock      sync.Mutex
	general   eventSlot
	touchDown eventSlot
	seq       uint64

	overwritten atomic.Uint64
}

// NewEventSlots creates empty event slots.
func NewEventSlots() *EventSlots {
	s := &EventSlots{}
	s.general.ev.Reset()
	s.touchDown.ev.Reset()
	return s
}

// Put stores a completed event.
// A none-kind event is ignored as it would free an occupied slot.
func (s *EventSlots) Put(ev *protocol.Event) {
	if ev.IsNone() {
		return
	}
	s.lock.Lock()
	s.seq++
	target := &s.general
	if ev.Kind == protocol.EventTouchDown && !s.general.ev.IsNone() {
		target = &s.touchDown
	}
	if !target.ev.IsNone() {
		s.overwritten.Add(1)
	}
	target.ev, target.seq = *ev, s.seq
	s.lock.Unlock()
}

// Next copies the oldest pending event into ev. The slot stays occupied
// until Done is called with the returned token.
func (s *EventSlots) Next(ev *protocol.Event) (SlotToken, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	slot, isTouchDown := s.oldestLocked()
	if slot == nil {
		return SlotToken{}, false
	}
	*ev = slot.ev
	return SlotToken{touchDown: isTouchDown, seq: slot.seq}, true
}

// Done frees the slot of a handled event. The slot is left alone if it was
// overwritten by a newer event in the meantime.
func (s *EventSlots) Done(token SlotToken) {
	s.lock.Lock()
	slot := &s.general
	if token.touchDown {
		slot = &s.touchDown
	}
	if slot.seq == token.seq {
		slot.ev.Reset()
	}
	s.lock.Unlock()
}

// Pending returns the number of occupied slots.
func (s *EventSlots) Pending() (n int) {
	s.lock.Lock()
	if !s.general.ev.IsNone() {
		n++
	}
	if !s.touchDown.ev.IsNone() {
		n++
	}
	s.lock.Unlock()
	return
}

// Overwritten returns the number of events lost by overwriting.
func (s *EventSlots) Overwritten() uint64 {
	return s.overwritten.Load()
}

func (s *EventSlots) oldestLocked() (*eventSlot, bool) {
	g, t := !s.general.ev.IsNone(), !s.touchDown.ev.IsNone()
	switch {
	case g && t:
		if s.touchDown.seq < s.general.seq {
			return &s.touchDown, true
		}
		return &s.general, false
	case g:
		return &s.general, false
	case t:
		return &s.touchDown, true
	}
	return nil, false
}
