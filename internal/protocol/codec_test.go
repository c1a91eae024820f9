package protocol

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestHeaderDefaults(t *testing.T) {
	m := NewMessage(GetLost)
	want := []byte{0xff, 0xff, 0xff}
	if !bytes.Equal(m.Bytes(), want) {
		t.Errorf("header = % x, want % x", m.Bytes(), want)
	}

	r, err := NewReader(NewMessage(SetYourID).SetID(42).Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind() != SetYourID {
		t.Errorf("kind = %d, want %d", r.Kind(), SetYourID)
	}
	if r.ID() != 42 {
		t.Errorf("id = %d, want 42", r.ID())
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	bytesIn := []int8{math.MinInt8, -1, 0, 1, math.MaxInt8}
	shortsIn := []int16{math.MinInt16, -1, 0, 1, 32000, math.MaxInt16}
	intsIn := []int32{math.MinInt32, -1, 0, 1, -16777216, math.MaxInt32}

	m := NewMessage(NewPlayer)
	for _, v := range bytesIn {
		m.PutByte(v)
	}
	m.PutBool(true).PutBool(false)
	for _, v := range shortsIn {
		m.PutShort(v)
	}
	for _, v := range intsIn {
		m.PutInt(v)
	}

	r, err := NewReader(m.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range bytesIn {
		if got := r.Byte(); got != v {
			t.Errorf("byte = %d, want %d", got, v)
		}
	}
	if !r.Bool() || r.Bool() {
		t.Error("bool round trip failed")
	}
	for _, v := range shortsIn {
		if got := r.Short(); got != v {
			t.Errorf("short = %d, want %d", got, v)
		}
	}
	for _, v := range intsIn {
		if got := r.Int(); got != v {
			t.Errorf("int = %d, want %d", got, v)
		}
	}
	if r.Err() != nil {
		t.Errorf("unexpected error: %v", r.Err())
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", r.Remaining())
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "Ann", "nul\x00inside", "\x00", "blåbærsyltetøy", "日本語", "rocket \U0001F680"} {
		m := NewMessage(PlayerSays).PutShort(3).PutString(s)
		if m.Err() != nil {
			t.Fatalf("encode %q: %v", s, m.Err())
		}
		r, _ := NewReader(m.Bytes())
		if id := r.Short(); id != 3 {
			t.Errorf("id = %d", id)
		}
		if got := r.Text(); got != s {
			t.Errorf("string = %q, want %q", got, s)
		}
		if r.Err() != nil {
			t.Errorf("decode %q: %v", s, r.Err())
		}
	}
}

func TestStringWireFormat(t *testing.T) {
	m := NewMessage(Say).PutString("a\x00")
	// outer count 5, inner utf length 3, 'a', C0 80
	want := []byte{0x07, 0xff, 0xff, 0x00, 0x05, 0x00, 0x03, 'a', 0xc0, 0x80}
	if !bytes.Equal(m.Bytes(), want) {
		t.Errorf("wire = % x, want % x", m.Bytes(), want)
	}
	for _, b := range m.Bytes()[HeaderSize+4:] {
		if b == 0 {
			t.Error("encoded text contains a zero byte")
		}
	}

	// supplementary characters travel as two three-byte surrogates
	m = NewMessage(Say).PutString("\U0001F680")
	if n := m.Len() - HeaderSize - 4; n != 6 {
		t.Errorf("surrogate pair encoded in %d bytes, want 6", n)
	}
}

func TestStringTooLong(t *testing.T) {
	m := NewMessage(Say).PutString(strings.Repeat("x", 70000))
	if !errors.Is(m.Err(), ErrStringTooLong) {
		t.Errorf("err = %v, want ErrStringTooLong", m.Err())
	}
}

func TestChunkedGrowth(t *testing.T) {
	m := NewMessage(NewStar)
	if cap(m.Bytes()) != chunkSize {
		t.Errorf("initial cap = %d, want %d", cap(m.Bytes()), chunkSize)
	}
	for i := 0; i < 100; i++ {
		m.PutInt(int32(i))
	}
	if cap(m.Bytes())%chunkSize != 0 {
		t.Errorf("cap %d is not a multiple of %d", cap(m.Bytes()), chunkSize)
	}
	if m.Len() != HeaderSize+400 {
		t.Errorf("len = %d", m.Len())
	}
}

func TestReaderShortMessage(t *testing.T) {
	if _, err := NewReader([]byte{1, 0}); !errors.Is(err, ErrShortMessage) {
		t.Errorf("err = %v, want ErrShortMessage", err)
	}

	r, _ := NewReader(NewMessage(SetTurn).PutByte(1).Bytes())
	r.Byte()
	if v := r.Short(); v != 0 {
		t.Errorf("short past end = %d, want 0", v)
	}
	if !errors.Is(r.Err(), ErrShortMessage) {
		t.Errorf("err = %v, want ErrShortMessage", r.Err())
	}
	// sticky: later reads keep failing
	if r.Byte() != 0 || r.Err() == nil {
		t.Error("error should be sticky")
	}
}

func TestReaderMalformedString(t *testing.T) {
	// outer count 3, inner length 1, lone continuation byte
	payload := []byte{byte(Say), 0xff, 0xff, 0x00, 0x03, 0x00, 0x01, 0x80}
	r, _ := NewReader(payload)
	if s := r.Text(); s != "" {
		t.Errorf("got %q", s)
	}
	if !errors.Is(r.Err(), ErrMalformedString) {
		t.Errorf("err = %v, want ErrMalformedString", r.Err())
	}
}

func TestReaderRewind(t *testing.T) {
	r, _ := NewReader(NewMessage(Login).PutByte(Version).PutString("Ann").Bytes())
	if r.Byte() != Version || r.Text() != "Ann" {
		t.Fatal("first pass failed")
	}
	r.Rewind()
	if v := r.Byte(); v != Version {
		t.Errorf("after rewind version = %d", v)
	}
}
