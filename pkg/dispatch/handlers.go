package dispatch

import (
	"sync"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// HandlerFunc handles button, slider and number callbacks.
type HandlerFunc func(objectIndex uint16, value protocol.CallbackInfo)

// InfoHandlerFunc handles info callbacks.
type InfoHandlerFunc func(objectIndex uint16, info protocol.InfoData)

// Handlers maps the opaque references sent to the host to widget handlers.
type Handlers struct {
	lock  sync.RWMutex
	next  protocol.HandlerRef
	funcs map[protocol.HandlerRef]interface{}
}

// NewHandlers creates an empty handler table.
func NewHandlers() *Handlers {
	return &Handlers{funcs: make(map[protocol.HandlerRef]interface{})}
}

// Register adds a widget handler and returns its reference.
func (h *Handlers) Register(fn HandlerFunc) protocol.HandlerRef {
	return h.add(fn)
}

// RegisterInfo adds an info handler and returns its reference.
func (h *Handlers) RegisterInfo(fn InfoHandlerFunc) protocol.HandlerRef {
	return h.add(fn)
}

// Unregister removes a handler.
func (h *Handlers) Unregister(ref protocol.HandlerRef) {
	h.lock.Lock()
	delete(h.funcs, ref)
	h.lock.Unlock()
}

// Len returns the number of registered handlers.
func (h *Handlers) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.funcs)
}

func (h *Handlers) add(fn interface{}) protocol.HandlerRef {
	h.lock.Lock()
	defer h.lock.Unlock()
	for {
		if h.next++; h.next == 0 {
			continue
		}
		if _, exist := h.funcs[h.next]; !exist {
			break
		}
	}
	h.funcs[h.next] = fn
	return h.next
}

func (h *Handlers) lookup(ref protocol.HandlerRef) interface{} {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.funcs[ref]
}

// call invokes the handler referenced by a callback event.
func (h *Handlers) call(ev *protocol.Event) bool {
	switch fn := h.lookup(ev.Callback.Handler).(type) {
	case HandlerFunc:
		if ev.Kind == protocol.EventInfoCallback {
			return false
		}
		fn(ev.Callback.ObjectIndex, ev.Callback)
		return true
	case InfoHandlerFunc:
		if ev.Kind != protocol.EventInfoCallback {
			return false
		}
		fn(ev.Callback.ObjectIndex, ev.Info)
		return true
	}
	return false
}
