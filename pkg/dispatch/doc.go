// Package dispatch maps decoded events to registered callbacks.
//
// The Dispatcher runs in the application context. It keeps the session
// state (connected, display geometry, host clock) and the touch gesture
// state, which are only changed by dispatching events.
package dispatch
