package osc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode parses one datagram. Any structural problem yields an error that
// matches apperr.ErrDecode.
func Decode(b []byte) (Packet, error) {
	if len(b) == 0 {
		return nil, ErrEmptyPacket
	}
	switch b[0] {
	case '/':
		return decodeMessage(b)
	case '#':
		return decodeBundle(b)
	}
	return nil, ErrBadAddress
}

func decodeMessage(b []byte) (*Message, error) {
	addr, off, err := readString(b, 0)
	if err != nil {
		return nil, err
	}
	if len(addr) == 0 || addr[0] != '/' {
		return nil, ErrBadAddress
	}
	msg := &Message{Address: addr}
	// Messages without a type tag string carry no arguments.
	if off == len(b) {
		return msg, nil
	}

	tags, off, err := readString(b, off)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 || tags[0] != ',' {
		return nil, ErrBadTypeTags
	}

	for i := 1; i < len(tags); i++ {
		var arg any
		arg, off, err = readArg(b, off, tags[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i-1, err)
		}
		msg.Args = append(msg.Args, arg)
	}
	return msg, nil
}

func readArg(b []byte, off int, tag byte) (any, int, error) {
	switch tag {
	case 'i':
		v, off, err := readUint32(b, off)
		return int32(v), off, err
	case 'f':
		v, off, err := readUint32(b, off)
		return math.Float32frombits(v), off, err
	case 'c':
		v, off, err := readUint32(b, off)
		return Char(rune(v)), off, err
	case 'r':
		v, off, err := readUint32(b, off)
		return RGBA(v), off, err
	case 'm':
		if off+4 > len(b) {
			return nil, off, ErrShortBuffer
		}
		var m MIDI
		copy(m[:], b[off:off+4])
		return m, off + 4, nil
	case 'h':
		v, off, err := readUint64(b, off)
		return int64(v), off, err
	case 'd':
		v, off, err := readUint64(b, off)
		return math.Float64frombits(v), off, err
	case 't':
		v, off, err := readUint64(b, off)
		return Timetag(v), off, err
	case 's':
		return readString(b, off)
	case 'S':
		s, off, err := readString(b, off)
		return Symbol(s), off, err
	case 'b':
		return readBlob(b, off)
	case 'T':
		return true, off, nil
	case 'F':
		return false, off, nil
	case 'N':
		return nil, off, nil
	case 'I':
		return Impulse{}, off, nil
	}
	return nil, off, fmt.Errorf("%w %q", ErrUnknownTag, tag)
}

func decodeBundle(b []byte) (*Bundle, error) {
	tag, off, err := readString(b, 0)
	if err != nil {
		return nil, err
	}
	if tag != bundleTag {
		return nil, ErrBadBundle
	}
	tt, off, err := readUint64(b, off)
	if err != nil {
		return nil, err
	}
	bundle := &Bundle{Timetag: Timetag(tt)}
	for off < len(b) {
		size, next, err := readUint32(b, off)
		if err != nil {
			return nil, err
		}
		end := next + int(size)
		if size == 0 || size%4 != 0 || end > len(b) {
			return nil, fmt.Errorf("%w: element size %d at offset %d", ErrBadBundle, size, off)
		}
		elem, err := Decode(b[next:end])
		if err != nil {
			return nil, err
		}
		bundle.Elements = append(bundle.Elements, elem)
		off = end
	}
	return bundle, nil
}

// readString reads a NUL-terminated string padded to a 4-byte boundary.
func readString(b []byte, off int) (string, int, error) {
	end := -1
	for i := off; i < len(b); i++ {
		if b[i] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return "", off, ErrUnterminated
	}
	next := off + pad4(end-off+1)
	if next > len(b) {
		return "", off, ErrShortBuffer
	}
	for _, c := range b[end:next] {
		if c != 0 {
			return "", off, ErrBadPadding
		}
	}
	return string(b[off:end]), next, nil
}

func readBlob(b []byte, off int) ([]byte, int, error) {
	size, off, err := readUint32(b, off)
	if err != nil {
		return nil, off, err
	}
	n := int(size)
	if off+pad4(n) > len(b) {
		return nil, off, ErrShortBuffer
	}
	blob := make([]byte, n)
	copy(blob, b[off:off+n])
	return blob, off + pad4(n), nil
}

func readUint32(b []byte, off int) (uint32, int, error) {
	if off+4 > len(b) {
		return 0, off, ErrShortBuffer
	}
	return binary.BigEndian.Uint32(b[off:]), off + 4, nil
}

func readUint64(b []byte, off int) (uint64, int, error) {
	if off+8 > len(b) {
		return 0, off, ErrShortBuffer
	}
	return binary.BigEndian.Uint64(b[off:]), off + 8, nil
}
