package sim

import (
	"github.com/robotalks/bluedisplay.go/pkg/display"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Rig wires a Display to a simulated Host.
type Rig struct {
	Host    *Host
	Display *display.Display
	Link    *transport.LinkState
	// DMA is set when the rig uses the DMA backend.
	DMA *DMA
}

// NewSerialRig creates a Rig using the byte-blocking backend.
func NewSerialRig(width, height uint16, conf *display.Config) *Rig {
	r := &Rig{Link: transport.NewLinkState(true)}
	rx := &RxInterrupt{}
	r.Host = NewHost(width, height, rx)
	backend := transport.NewSerialBackend(&UART{Out: r.Host}, r.Link)
	rx.Handler = backend
	r.Display = display.New(backend, conf)
	rx.Notify = r.Display.Wake
	return r
}

// NewDMARig creates a Rig using the DMA backend with a receive buffer of
// recvSize bytes.
func NewDMARig(width, height uint16, conf *display.Config, recvSize int) *Rig {
	if conf == nil {
		conf = display.NewConfig()
	}
	r := &Rig{Link: transport.NewLinkState(true)}
	r.DMA = NewDMA(nil, recvSize)
	r.Host = NewHost(width, height, r.DMA)
	r.DMA.Out = r.Host
	backend := conf.NewDMABackend(r.DMA, r.DMA, r.DMA.Buffer, r.Link)
	r.DMA.Complete = backend.TransferComplete
	r.Display = display.New(backend, conf)
	r.DMA.Notify = r.Display.Wake
	return r
}
