// FILE: lixenwraith/nvconfig/device.go
package nvconfig

import "fmt"

// ErasedByte is the content of a never-written EEPROM cell.
const ErasedByte byte = 0xFF

// Device is a byte-addressable persistent store with an 8-bit address space.
// Peek and Poke are assumed infallible; devices that can fail record the error
// on their side.
type Device interface {
	Peek(addr uint8) byte
	Poke(addr uint8, value byte)
}

// Accessors returns the accessor pair a ConfigStore expects for d.
func Accessors(d Device) (ReadByteFunc, WriteByteFunc) {
	return d.Peek, d.Poke
}

// MemoryDevice is an in-memory EEPROM. The zero value is a zero-filled store;
// NewMemoryDevice returns an erased one.
type MemoryDevice struct {
	cells  [Capacity]byte
	writes int
}

// NewMemoryDevice returns a device whose cells are all ErasedByte.
func NewMemoryDevice() *MemoryDevice {
	d := &MemoryDevice{}
	d.Erase()
	return d
}

// Erase sets every cell to ErasedByte. It does not count as writes.
func (d *MemoryDevice) Erase() {
	for i := range d.cells {
		d.cells[i] = ErasedByte
	}
}

func (d *MemoryDevice) Peek(addr uint8) byte { return d.cells[addr] }

func (d *MemoryDevice) Poke(addr uint8, value byte) {
	d.cells[addr] = value
	d.writes++
}

// Writes returns the number of Poke calls since creation.
func (d *MemoryDevice) Writes() int { return d.writes }

// Bytes returns a copy of the whole device content.
func (d *MemoryDevice) Bytes() []byte {
	out := make([]byte, Capacity)
	copy(out, d.cells[:])
	return out
}

// SetBytes copies img to the start of the device without counting writes.
func (d *MemoryDevice) SetBytes(img []byte) error {
	if len(img) > Capacity {
		return fmt.Errorf("%w: %d bytes exceed device capacity %d", ErrImageSize, len(img), Capacity)
	}
	copy(d.cells[:], img)
	return nil
}
