package protocol

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderSize is the kind byte plus the 16-bit correlation id.
	HeaderSize = 3
	// NoID is the default correlation id.
	NoID int16 = -1

	chunkSize = 64
)

var (
	ErrShortMessage    = errors.New("protocol: message too short")
	ErrMalformedString = errors.New("protocol: malformed string")
	ErrStringTooLong   = errors.New("protocol: string too long")
)

// Message is an outgoing message under construction. Fields are appended
// in order; once handed to a queue or connection it must not be modified.
type Message struct {
	buf []byte
	err error
}

// NewMessage starts a message of the given kind with the default id.
func NewMessage(kind Kind) *Message {
	m := &Message{buf: make([]byte, HeaderSize, chunkSize)}
	m.buf[0] = byte(kind)
	return m.SetID(NoID)
}

// grow makes room for n more bytes, one chunk at a time.
func (m *Message) grow(n int) {
	need := len(m.buf) + n
	if need <= cap(m.buf) {
		return
	}
	size := (need/chunkSize + 1) * chunkSize
	buf := make([]byte, len(m.buf), size)
	copy(buf, m.buf)
	m.buf = buf
}

// Kind returns the message kind.
func (m *Message) Kind() Kind { return Kind(m.buf[0]) }

// SetID sets the correlation id.
func (m *Message) SetID(id int16) *Message {
	binary.BigEndian.PutUint16(m.buf[1:], uint16(id))
	return m
}

func (m *Message) PutByte(v int8) *Message {
	m.grow(1)
	m.buf = append(m.buf, byte(v))
	return m
}

func (m *Message) PutBool(v bool) *Message {
	if v {
		return m.PutByte(1)
	}
	return m.PutByte(0)
}

func (m *Message) PutShort(v int16) *Message {
	m.grow(2)
	m.buf = binary.BigEndian.AppendUint16(m.buf, uint16(v))
	return m
}

func (m *Message) PutInt(v int32) *Message {
	m.grow(4)
	m.buf = binary.BigEndian.AppendUint32(m.buf, uint32(v))
	return m
}

// PutString writes a 16-bit byte count followed by the modified UTF-8
// block (itself length prefixed) for s.
func (m *Message) PutString(s string) *Message {
	enc, err := appendModifiedUTF8(nil, s)
	if err != nil {
		if m.err == nil {
			m.err = err
		}
		return m
	}
	m.grow(2 + len(enc))
	m.buf = binary.BigEndian.AppendUint16(m.buf, uint16(len(enc)))
	m.buf = append(m.buf, enc...)
	return m
}

// Err reports the first encoding failure, if any.
func (m *Message) Err() error { return m.err }

// Bytes returns the encoded payload without framing.
func (m *Message) Bytes() []byte { return m.buf }

// Len is the payload length.
func (m *Message) Len() int { return len(m.buf) }
