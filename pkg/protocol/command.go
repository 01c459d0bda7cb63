package protocol

import "encoding/binary"

// LastFunctionWithoutData is the highest function ID never followed by a
// data field. Functions above it always carry one.
const LastFunctionWithoutData FunctionID = 0x5F

// HasDataField indicates the function is always followed by a data field.
func (f FunctionID) HasDataField() bool {
	return f > LastFunctionWithoutData
}

// Command is a decoded command frame, as the host sees it.
type Command struct {
	Function   FunctionID
	Args       []uint16
	Payload    []byte
	HasPayload bool
}

// Bytes encodes the command.
func (c *Command) Bytes() ([]byte, error) {
	if c.HasPayload {
		return EncodeFrameWithPayload(c.Function, c.Args, c.Payload)
	}
	return EncodeFrame(c.Function, c.Args...)
}

// ParseCommand decodes a single command frame at the beginning of b and
// returns the number of bytes consumed. A data field is decoded when the
// function requires one, or when the bytes following the arguments start
// with a data field header.
func ParseCommand(b []byte) (*Command, int, error) {
	if len(b) < CommandHeaderSize {
		return nil, 0, short("%d bytes", len(b))
	}
	if b[0] != SyncToken {
		return nil, 0, desync("leading 0x%02x", b[0])
	}
	argsLen := int(binary.LittleEndian.Uint16(b[2:]))
	if argsLen&1 != 0 || argsLen > MaxArgs*2 {
		return nil, 0, desync("argument block length %d", argsLen)
	}
	n := CommandHeaderSize + argsLen
	if len(b) < n {
		return nil, 0, short("%d of %d bytes", len(b), n)
	}
	cmd := &Command{Function: FunctionID(b[1]), Args: make([]uint16, argsLen/2)}
	for i := range cmd.Args {
		cmd.Args[i] = binary.LittleEndian.Uint16(b[CommandHeaderSize+i*2:])
	}
	rest := b[n:]
	if !cmd.Function.HasDataField() && (len(rest) < 2 || rest[0] != SyncToken || rest[1] != DataFieldTag) {
		return cmd, n, nil
	}
	if len(rest) < CommandHeaderSize {
		return nil, 0, short("data field header")
	}
	if rest[0] != SyncToken || rest[1] != DataFieldTag {
		return nil, 0, desync("data field header 0x%02x 0x%02x", rest[0], rest[1])
	}
	dataLen := int(binary.LittleEndian.Uint16(rest[2:]))
	if len(rest) < CommandHeaderSize+dataLen {
		return nil, 0, short("data field %d of %d bytes", len(rest)-CommandHeaderSize, dataLen)
	}
	cmd.HasPayload = true
	cmd.Payload = append([]byte(nil), rest[CommandHeaderSize:CommandHeaderSize+dataLen]...)
	return cmd, n + CommandHeaderSize + dataLen, nil
}

type cmdParseState int

const (
	cmdStateSync cmdParseState = iota
	cmdStateFunction
	cmdStateArgsLen
	cmdStateArgs
	cmdStateDataSync
	cmdStateDataTag
	cmdStateDataLen
	cmdStateData
)

// CommandParser parses a stream of command frames byte by byte.
// In a stream a data field is only expected for functions above
// LastFunctionWithoutData.
type CommandParser struct {
	state   cmdParseState
	buf     []byte
	need    int
	cmd     *Command
	skipped int
}

// Skipped returns the number of bytes discarded while out of sync.
func (p *CommandParser) Skipped() int {
	return p.skipped
}

// Parse consumes one byte and returns a command when a frame completes.
func (p *CommandParser) Parse(b byte) *Command {
	switch p.state {
	case cmdStateSync:
		if b != SyncToken {
			p.skipped++
			return nil
		}
		p.state = cmdStateFunction
	case cmdStateFunction:
		p.cmd = &Command{Function: FunctionID(b)}
		p.buf, p.need, p.state = p.buf[:0], 2, cmdStateArgsLen
	case cmdStateArgsLen:
		if p.buf = append(p.buf, b); len(p.buf) < p.need {
			return nil
		}
		n := int(binary.LittleEndian.Uint16(p.buf))
		if n&1 != 0 || n > MaxArgs*2 {
			return p.resync()
		}
		p.buf, p.need, p.state = p.buf[:0], n, cmdStateArgs
		if n == 0 {
			return p.argsDone()
		}
	case cmdStateArgs:
		if p.buf = append(p.buf, b); len(p.buf) < p.need {
			return nil
		}
		return p.argsDone()
	case cmdStateDataSync:
		if b != SyncToken {
			return p.resync()
		}
		p.state = cmdStateDataTag
	case cmdStateDataTag:
		if b != DataFieldTag {
			return p.resync()
		}
		p.buf, p.need, p.state = p.buf[:0], 2, cmdStateDataLen
	case cmdStateDataLen:
		if p.buf = append(p.buf, b); len(p.buf) < p.need {
			return nil
		}
		n := int(binary.LittleEndian.Uint16(p.buf))
		p.cmd.HasPayload = true
		p.cmd.Payload = make([]byte, 0, n)
		p.need, p.state = n, cmdStateData
		if n == 0 {
			return p.done()
		}
	case cmdStateData:
		if p.cmd.Payload = append(p.cmd.Payload, b); len(p.cmd.Payload) < p.need {
			return nil
		}
		return p.done()
	}
	return nil
}

func (p *CommandParser) argsDone() *Command {
	p.cmd.Args = make([]uint16, len(p.buf)/2)
	for i := range p.cmd.Args {
		p.cmd.Args[i] = binary.LittleEndian.Uint16(p.buf[i*2:])
	}
	if p.cmd.Function.HasDataField() {
		p.state = cmdStateDataSync
		return nil
	}
	return p.done()
}

func (p *CommandParser) done() *Command {
	cmd := p.cmd
	p.cmd, p.state = nil, cmdStateSync
	return cmd
}

func (p *CommandParser) resync() *Command {
	p.cmd, p.state = nil, cmdStateSync
	return nil
}
