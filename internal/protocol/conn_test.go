package protocol

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestConnFrameRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := NewConn(a), NewConn(b)
	defer ca.Close()
	defer cb.Close()

	go func() {
		ca.Send(NewMessage(Login).PutByte(Version).PutString("Ann"))
	}()

	r, err := cb.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r.Kind() != Login {
		t.Errorf("kind = %d", r.Kind())
	}
	if v, name := r.Byte(), r.Text(); v != Version || name != "Ann" {
		t.Errorf("got (%d, %q)", v, name)
	}
}

func TestConnLengthPrefix(t *testing.T) {
	a, b := net.Pipe()
	ca := NewConn(a)
	defer ca.Close()
	defer b.Close()

	go ca.Send(NewMessage(SetYourID).PutShort(7))

	buf := make([]byte, 7)
	b.SetReadDeadline(time.Now().Add(2 * time.Second))
	n := 0
	for n < len(buf) {
		k, err := b.Read(buf[n:])
		if err != nil {
			t.Fatalf("raw read: %v", err)
		}
		n += k
	}
	want := []byte{0x00, 0x05, 0x00, 0xff, 0xff, 0x00, 0x07}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("frame = % x, want % x", buf, want)
		}
	}
}

func TestConnFrameTooLarge(t *testing.T) {
	a, b := net.Pipe()
	ca := NewConn(a)
	defer ca.Close()
	defer b.Close()

	m := NewMessage(PlayerSays)
	for m.Len() <= MaxFrame {
		m.PutInt(0)
	}
	if err := ca.WriteMessage(m); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestConnCloseUnblocksRead(t *testing.T) {
	a, b := net.Pipe()
	ca := NewConn(a)
	defer b.Close()

	errc := make(chan error, 1)
	go func() {
		_, err := ca.ReadMessage()
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	ca.Close()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("expected an error after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read still blocked after close")
	}

	// a second close is harmless
	if err := ca.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestConnTruncatedFrame(t *testing.T) {
	a, b := net.Pipe()
	cb := NewConn(b)
	defer cb.Close()

	go func() {
		a.Write([]byte{0x00, 0x10, 0x01, 0x02})
		a.Close()
	}()

	if _, err := cb.ReadMessage(); err == nil {
		t.Error("expected error for truncated frame")
	}
}
