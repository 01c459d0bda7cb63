package transport

// ByteSource provides received bytes to the Reassembler.
type ByteSource interface {
	// Available returns the number of bytes which can be taken by Next.
	Available() int
	// Next returns the next byte. It must only be called when Available
	// is positive.
	Next() byte
}

// SliceSource is a ByteSource over a byte slice.
type SliceSource []byte

// Available implements ByteSource.
func (s *SliceSource) Available() int {
	return len(*s)
}

// Next implements ByteSource.
func (s *SliceSource) Next() byte {
	b := (*s)[0]
	*s = (*s)[1:]
	return b
}
