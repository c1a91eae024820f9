package protocol

import "encoding/binary"

// Reader decodes one received message. Reads advance a cursor; after the
// first failure every read returns a zero value and Err reports it.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader wraps a received payload. The payload must hold at least the
// header.
func NewReader(payload []byte) (*Reader, error) {
	if len(payload) < HeaderSize {
		return nil, ErrShortMessage
	}
	return &Reader{buf: payload, pos: HeaderSize}, nil
}

func (r *Reader) Kind() Kind { return Kind(r.buf[0]) }

func (r *Reader) ID() int16 { return int16(binary.BigEndian.Uint16(r.buf[1:])) }

// Rewind moves the cursor back to the first field.
func (r *Reader) Rewind() {
	r.pos = HeaderSize
	r.err = nil
}

// Err reports the first decoding failure, if any.
func (r *Reader) Err() error { return r.err }

// Remaining is the number of undecoded bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = ErrShortMessage
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Byte() int8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return int8(b[0])
}

func (r *Reader) Bool() bool {
	return r.Byte() != 0
}

func (r *Reader) Short() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

func (r *Reader) Int() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// Text decodes a string field.
func (r *Reader) Text() string {
	n := r.take(2)
	if n == nil {
		return ""
	}
	b := r.take(int(binary.BigEndian.Uint16(n)))
	if b == nil {
		return ""
	}
	s, err := decodeModifiedUTF8(b)
	if err != nil {
		r.err = err
		return ""
	}
	return s
}
