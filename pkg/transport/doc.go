// Package transport moves protocol frames over a byte channel.
package transport

// Two backends are provided.
//
// SerialBackend sends byte by byte, spinning on the UART transmit register,
// and receives from the RX interrupt into two event slots: a general one
// and one reserved for touch-down events which arrive while the general
// slot is still occupied.
//
// DMABackend copies frames into a send ring which is drained by chained
// DMA transfers, and receives into a circular buffer written by the DMA
// controller. Frames are reassembled when the application polls.
//
// Both backends share the Reassembler. There is one notification context
// (interrupt, DMA completion or a reader goroutine) and one application
// context. Send must only be called from the application context; the
// senders do not synchronize multiple producers.
