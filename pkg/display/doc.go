// Package display is the application facing side of the protocol engine.
//
// A Display combines a transport Backend with a Dispatcher. Commands are
// sent from the application context, and CheckAndHandleEvents must be
// called regularly from the same context to dispatch received events.
package display
