// Package osc encodes and decodes Open Sound Control 1.0 packets as they
// travel in a single UDP datagram: a message (address, type tags, arguments)
// or a bundle of nested packets.
//
// Arguments are plain Go values:
//
//	'i' int32     'h' int64    'f' float32   'd' float64
//	's' string    'S' Symbol   'b' []byte    't' Timetag
//	'T' true      'F' false    'N' nil       'I' Impulse
//	'c' Char      'r' RGBA     'm' MIDI
package osc

import (
	"fmt"
	"strings"
	"time"

	"last-snow/internal/apperr"
)

// MTU is the largest datagram the listener reads.
const MTU = 1536

const bundleTag = "#bundle"

// Packet is either a *Message or a *Bundle.
type Packet interface {
	isPacket()
}

type Message struct {
	Address string
	Args    []any
}

type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

func (*Message) isPacket() {}
func (*Bundle) isPacket()  {}

// NewMessage builds a message; args must be of the Go types listed in the
// package doc.
func NewMessage(address string, args ...any) *Message {
	return &Message{Address: address, Args: args}
}

func NewBundle(tt Timetag, elements ...Packet) *Bundle {
	return &Bundle{Timetag: tt, Elements: elements}
}

// TypeTags returns the tag string without the leading comma, with '?' for
// values that have no OSC representation.
func (m *Message) TypeTags() string {
	var sb strings.Builder
	for _, a := range m.Args {
		tag, ok := typeTag(a)
		if !ok {
			tag = '?'
		}
		sb.WriteByte(tag)
	}
	return sb.String()
}

func (m *Message) String() string {
	var sb strings.Builder
	sb.WriteString(m.Address)
	sb.WriteString(" ,")
	sb.WriteString(m.TypeTags())
	for _, a := range m.Args {
		fmt.Fprintf(&sb, " %v", a)
	}
	return sb.String()
}

type (
	Symbol  string
	Char    rune
	RGBA    uint32
	MIDI    [4]byte
	Impulse struct{}
)

// Timetag is a 64-bit NTP timestamp: seconds since 1900 in the high word,
// fractional seconds in the low word.
type Timetag uint64

// Immediately is the reserved timetag meaning "apply on receipt".
const Immediately Timetag = 1

const ntpEpochOffset = 2208988800

func TimetagFromTime(t time.Time) Timetag {
	secs := uint64(t.Unix() + ntpEpochOffset)
	frac := uint64(t.Nanosecond()) << 32 / uint64(time.Second)
	return Timetag(secs<<32 | frac)
}

func (t Timetag) Time() time.Time {
	secs := int64(uint64(t)>>32) - ntpEpochOffset
	nanos := (uint64(t) & 0xffffffff) * uint64(time.Second) >> 32
	return time.Unix(secs, int64(nanos)).UTC()
}

var (
	ErrShortBuffer   = fmt.Errorf("%w: osc: packet shorter than its contents", apperr.ErrDecode)
	ErrEmptyPacket   = fmt.Errorf("%w: osc: empty packet", apperr.ErrDecode)
	ErrBadAddress    = fmt.Errorf("%w: osc: address must start with '/'", apperr.ErrDecode)
	ErrUnterminated  = fmt.Errorf("%w: osc: unterminated string", apperr.ErrDecode)
	ErrBadPadding    = fmt.Errorf("%w: osc: non-zero padding", apperr.ErrDecode)
	ErrBadTypeTags   = fmt.Errorf("%w: osc: type tag string must start with ','", apperr.ErrDecode)
	ErrUnknownTag    = fmt.Errorf("%w: osc: unknown type tag", apperr.ErrDecode)
	ErrBadBundle     = fmt.Errorf("%w: osc: malformed bundle", apperr.ErrDecode)
	ErrUnsupportedGo = fmt.Errorf("osc: argument type has no OSC encoding")
)

func typeTag(a any) (byte, bool) {
	switch v := a.(type) {
	case int32:
		return 'i', true
	case int64:
		return 'h', true
	case float32:
		return 'f', true
	case float64:
		return 'd', true
	case string:
		return 's', true
	case Symbol:
		return 'S', true
	case []byte:
		return 'b', true
	case Timetag:
		return 't', true
	case bool:
		if v {
			return 'T', true
		}
		return 'F', true
	case nil:
		return 'N', true
	case Impulse:
		return 'I', true
	case Char:
		return 'c', true
	case RGBA:
		return 'r', true
	case MIDI:
		return 'm', true
	}
	return 0, false
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
