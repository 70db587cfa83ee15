// FILE: lixenwraith/nvconfig/file.go
package nvconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileDevice is an EEPROM image kept in a file of exactly Capacity bytes.
// Writes are buffered in memory until Flush or Close.
type FileDevice struct {
	path  string
	cells [Capacity]byte
	dirty bool
}

// OpenFileDevice loads the image at path. A missing file yields an erased image
// that is created on the first Flush.
func OpenFileDevice(path string) (*FileDevice, error) {
	d := &FileDevice{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		for i := range d.cells {
			d.cells[i] = ErasedByte
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read image file '%s': %w", path, err)
	case len(data) != Capacity:
		return nil, fmt.Errorf("%w: image file '%s' is %d bytes, want %d", ErrImageSize, path, len(data), Capacity)
	default:
		copy(d.cells[:], data)
	}

	return d, nil
}

// Path returns the image file path.
func (d *FileDevice) Path() string { return d.path }

func (d *FileDevice) Peek(addr uint8) byte { return d.cells[addr] }

func (d *FileDevice) Poke(addr uint8, value byte) {
	d.cells[addr] = value
	d.dirty = true
}

// Bytes returns a copy of the image.
func (d *FileDevice) Bytes() []byte {
	out := make([]byte, Capacity)
	copy(out, d.cells[:])
	return out
}

// Flush writes the image atomically if it changed since the last flush.
func (d *FileDevice) Flush() error {
	if !d.dirty {
		return nil
	}
	if err := atomicWriteFile(d.path, d.cells[:]); err != nil {
		return err
	}
	d.dirty = false
	return nil
}

// Close flushes pending writes.
func (d *FileDevice) Close() error {
	return d.Flush()
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file '%s': %w", tempPath, err)
	}

	// Sync data to disk
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file '%s': %w", tempPath, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file '%s': %w", tempPath, err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on '%s': %w", tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename '%s' to '%s': %w", tempPath, path, err)
	}
	removed = true

	return nil
}
