package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Encode serializes a message or bundle into datagram bytes.
func Encode(p Packet) ([]byte, error) {
	switch v := p.(type) {
	case *Message:
		return encodeMessage(v)
	case *Bundle:
		return encodeBundle(v)
	}
	return nil, fmt.Errorf("osc: cannot encode packet %T", p)
}

func encodeMessage(m *Message) ([]byte, error) {
	if len(m.Address) == 0 || m.Address[0] != '/' {
		return nil, fmt.Errorf("osc: address %q must start with '/'", m.Address)
	}
	tags := make([]byte, 0, len(m.Args)+1)
	tags = append(tags, ',')
	for i, a := range m.Args {
		tag, ok := typeTag(a)
		if !ok {
			return nil, fmt.Errorf("%w: argument %d is %T", ErrUnsupportedGo, i, a)
		}
		if str, ok := a.(string); ok && strings.IndexByte(str, 0) >= 0 {
			return nil, fmt.Errorf("osc: argument %d contains a NUL byte", i)
		}
		tags = append(tags, tag)
	}

	buf := appendString(nil, m.Address)
	buf = appendString(buf, string(tags))
	for _, a := range m.Args {
		buf = appendArg(buf, a)
	}
	return buf, nil
}

func appendArg(buf []byte, a any) []byte {
	switch v := a.(type) {
	case int32:
		return binary.BigEndian.AppendUint32(buf, uint32(v))
	case float32:
		return binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
	case Char:
		return binary.BigEndian.AppendUint32(buf, uint32(v))
	case RGBA:
		return binary.BigEndian.AppendUint32(buf, uint32(v))
	case MIDI:
		return append(buf, v[:]...)
	case int64:
		return binary.BigEndian.AppendUint64(buf, uint64(v))
	case float64:
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
	case Timetag:
		return binary.BigEndian.AppendUint64(buf, uint64(v))
	case string:
		return appendString(buf, v)
	case Symbol:
		return appendString(buf, string(v))
	case []byte:
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v)))
		buf = append(buf, v...)
		return append(buf, make([]byte, pad4(len(v))-len(v))...)
	}
	// T, F, N and I carry no payload.
	return buf
}

func encodeBundle(b *Bundle) ([]byte, error) {
	buf := appendString(nil, bundleTag)
	buf = binary.BigEndian.AppendUint64(buf, uint64(b.Timetag))
	for _, e := range b.Elements {
		data, err := Encode(e)
		if err != nil {
			return nil, err
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
		buf = append(buf, data...)
	}
	return buf, nil
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	return append(buf, make([]byte, pad4(len(s)+1)-len(s))...)
}
