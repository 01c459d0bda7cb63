// Package protocol provides the wire format of the remote display protocol.
package protocol

// The device (firmware) owns no display. Drawing is done by sending
// command frames to a host renderer, and user input comes back as event
// frames.
//
// Command frame (device -> host):
//
//	[0xA5][function][2*n LE16][arg0 LE16]...[argN LE16]
//	optionally followed by [0xA5][0x60][len LE16][payload...]
//
// Event frame (host -> device):
//
//	[raw len][kind][payload: raw len - 3 bytes][0xA5]
//
// The sync token closes every event frame, so a receiver that lost track
// of the stream discards bytes until it sees the token again.
// There is no checksum; corruption is detected only by the framing.
