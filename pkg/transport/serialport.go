package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialConfig configures a serial port.
type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	// PairedSignal selects the modem line reporting the peer is paired,
	// e.g. the STATE pin of a Bluetooth module: "", "dsr", "dcd" or "cts".
	PairedSignal string `yaml:"paired_signal"`
}

// OpenSerialPort opens a serial port in 8N1 mode.
func OpenSerialPort(conf SerialConfig) (serial.Port, error) {
	baud := conf.BaudRate
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.Open(conf.Device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Device, err)
	}
	return port, nil
}

// ModemLink is a LinkProbe reading a modem status line of a serial port.
type ModemLink struct {
	Port   serial.Port
	Signal string
}

// NewLinkProbe returns the probe for the configured paired signal.
func (c SerialConfig) NewLinkProbe(port serial.Port) (LinkProbe, error) {
	switch c.PairedSignal {
	case "":
		return AlwaysPaired, nil
	case "dsr", "dcd", "cts":
		return &ModemLink{Port: port, Signal: c.PairedSignal}, nil
	}
	return nil, fmt.Errorf("unknown paired signal %q", c.PairedSignal)
}

// IsPaired implements LinkProbe.
func (l *ModemLink) IsPaired() bool {
	bits, err := l.Port.GetModemStatusBits()
	if err != nil {
		return false
	}
	switch l.Signal {
	case "dsr":
		return bits.DSR
	case "dcd":
		return bits.DCD
	case "cts":
		return bits.CTS
	}
	return true
}
