// Package serialport adapts go.bug.st/serial to the line-oriented reader the
// recorder consumes.
package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Fixed link parameters of the temperature probe.
const (
	BaudRate    = 115200
	ReadTimeout = 1 * time.Second
)

// Port is an open serial device read one line at a time.
type Port struct {
	name string
	port serial.Port
	*LineReader
}

// Open opens name at 115200 8N1 with a 1s read timeout.
func Open(name string) (*Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", name, err)
	}
	if err := p.SetReadTimeout(ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %q: %w", name, err)
	}
	return &Port{name: name, port: p, LineReader: NewLineReader(p)}, nil
}

func (p *Port) Name() string { return p.name }

// Close releases the device. A blocked ReadLine returns with an error.
func (p *Port) Close() error {
	return p.port.Close()
}
