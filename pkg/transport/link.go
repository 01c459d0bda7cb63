package transport

import "sync/atomic"

// LinkProbe reports whether the physical link has a peer.
type LinkProbe interface {
	IsPaired() bool
}

// PairedFunc is the func form of LinkProbe.
type PairedFunc func() bool

// IsPaired implements LinkProbe.
func (f PairedFunc) IsPaired() bool {
	return f()
}

// AlwaysPaired is the probe for links without a pairing signal.
var AlwaysPaired LinkProbe = PairedFunc(func() bool { return true })

// LinkState is a LinkProbe set by whoever observes the pairing signal.
type LinkState struct {
	paired atomic.Bool
}

// NewLinkState creates a LinkState.
func NewLinkState(paired bool) *LinkState {
	s := &LinkState{}
	s.paired.Store(paired)
	return s
}

// Set updates the pairing state.
func (s *LinkState) Set(paired bool) {
	s.paired.Store(paired)
}

// IsPaired implements LinkProbe.
func (s *LinkState) IsPaired() bool {
	return s.paired.Load()
}

func probeOrDefault(p LinkProbe) LinkProbe {
	if p == nil {
		return AlwaysPaired
	}
	return p
}
