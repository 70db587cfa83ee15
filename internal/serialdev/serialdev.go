// Package serialdev reaches a node's EEPROM over a serial bench link.
//
// The bench firmware answers two requests: 'R' addr returns the byte at addr,
// 'W' addr value stores value and acknowledges with 'K'.
package serialdev

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/lixenwraith/nvconfig"
)

const (
	cmdRead  = 'R'
	cmdWrite = 'W'
	ack      = 'K'

	defaultReadTimeout = 500 * time.Millisecond
)

var (
	// ErrTimeout is returned when the node does not answer within the read timeout.
	ErrTimeout = errors.New("serial read timed out")

	// ErrBadAck is returned when a write is answered with something other than 'K'.
	ErrBadAck = errors.New("unexpected write acknowledgement")
)

// Device implements nvconfig.Device over a serial link. The first transport error
// is kept: afterwards Peek returns nvconfig.ErasedByte and Poke does nothing, so a
// broken link reads as an erased store. Check Err after each operation sequence.
type Device struct {
	mu   sync.Mutex
	port io.ReadWriteCloser
	err  error
}

var _ nvconfig.Device = (*Device)(nil)

// Open opens the named serial port at the given baud rate.
func Open(name string, baud int) (*Device, error) {
	if name == "" {
		return nil, errors.New("serial port is empty")
	}
	if baud <= 0 {
		return nil, fmt.Errorf("invalid serial baud rate: %d", baud)
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", name, err)
	}
	if err := port.SetReadTimeout(defaultReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}

	return New(port), nil
}

// New wraps an already open link. The port should return a zero-length read
// when the node does not answer.
func New(port io.ReadWriteCloser) *Device {
	return &Device{port: port}
}

// Peek reads the byte at addr.
func (d *Device) Peek(addr uint8) byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return nvconfig.ErasedByte
	}

	var buf [1]byte
	if err := d.exchange([]byte{cmdRead, addr}, buf[:]); err != nil {
		d.err = fmt.Errorf("read address %d: %w", addr, err)
		return nvconfig.ErasedByte
	}
	return buf[0]
}

// Poke stores value at addr.
func (d *Device) Poke(addr uint8, value byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return
	}

	var buf [1]byte
	if err := d.exchange([]byte{cmdWrite, addr, value}, buf[:]); err != nil {
		d.err = fmt.Errorf("write address %d: %w", addr, err)
		return
	}
	if buf[0] != ack {
		d.err = fmt.Errorf("write address %d: %w: 0x%02x", addr, ErrBadAck, buf[0])
	}
}

// Err returns the first transport error, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.port.Close()
}

func (d *Device) exchange(req, resp []byte) error {
	if err := writeFull(d.port, req); err != nil {
		return err
	}
	return readFull(d.port, resp)
}

// readFull fills buf. A zero-length read without error is how go.bug.st/serial
// reports an expired read timeout.
func readFull(r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTimeout
		}
		read += n
	}

	return nil
}

func writeFull(w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		written += n
	}
	return nil
}
