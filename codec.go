// FILE: lixenwraith/nvconfig/codec.go
package nvconfig

import "fmt"

// MarshalBinary encodes the record field by field into its RecordSize-byte image.
func (r Record) MarshalBinary() ([]byte, error) {
	img := make([]byte, RecordSize)
	r.encode(img)
	return img, nil
}

// UnmarshalBinary decodes a RecordSize-byte image into the record.
// Every byte is kept verbatim, including unknown flag values and a foreign mark.
func (r *Record) UnmarshalBinary(img []byte) error {
	if len(img) != RecordSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrImageSize, len(img), RecordSize)
	}
	r.decode(img)
	return nil
}

func (r *Record) encode(img []byte) {
	for _, s := range layout {
		dst := img[s.offset : s.offset+s.width]
		switch p := s.ref(r).(type) {
		case *[4]byte:
			copy(dst, p[:])
		case *uint8:
			dst[0] = *p
		case *Flag:
			dst[0] = byte(*p)
		case *Millis:
			byteOrder.PutUint32(dst, uint32(*p))
		}
	}
}

func (r *Record) decode(img []byte) {
	for _, s := range layout {
		src := img[s.offset : s.offset+s.width]
		switch p := s.ref(r).(type) {
		case *[4]byte:
			copy(p[:], src)
		case *uint8:
			*p = src[0]
		case *Flag:
			*p = Flag(src[0])
		case *Millis:
			*p = Millis(byteOrder.Uint32(src))
		}
	}
}
