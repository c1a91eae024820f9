package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

// MaxFrame is the largest payload a u16 length prefix can describe.
const MaxFrame = 0xffff

const closeFlushWait = 250 * time.Millisecond

var ErrFrameTooLarge = errors.New("protocol: frame too large")

// Conn frames messages over a stream as [u16 length][payload]. Reads are
// expected from one goroutine; writes may come from any goroutine.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader

	wmu sync.Mutex
	w   *bufio.Writer

	closeOnce sync.Once
}

// NewConn wraps c. TCP connections get Nagle's algorithm disabled.
func NewConn(c net.Conn) *Conn {
	if tc, ok := c.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return &Conn{
		conn: c,
		r:    bufio.NewReader(c),
		w:    bufio.NewWriter(c),
	}
}

// ReadMessage blocks until a whole frame has arrived.
func (c *Conn) ReadMessage() (*Reader, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(c.r, hdr[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(hdr[:]))
	payload := make([]byte, n)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return NewReader(payload)
}

// WriteMessage buffers one framed message. Call Flush to push it out.
func (c *Conn) WriteMessage(m *Message) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.writeLocked(m)
}

func (c *Conn) writeLocked(m *Message) error {
	if err := m.Err(); err != nil {
		return err
	}
	b := m.Bytes()
	if len(b) > MaxFrame {
		return ErrFrameTooLarge
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(b)))
	if _, err := c.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := c.w.Write(b)
	return err
}

// WriteBatch buffers several messages as one uninterrupted run and flushes.
// A message that cannot be framed is skipped; the stream stays intact.
func (c *Conn) WriteBatch(msgs []*Message) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	for _, m := range msgs {
		err := c.writeLocked(m)
		if err == nil || errors.Is(err, ErrFrameTooLarge) || errors.Is(err, ErrStringTooLong) {
			continue
		}
		return err
	}
	return c.w.Flush()
}

// Flush pushes buffered frames to the stream.
func (c *Conn) Flush() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.w.Flush()
}

// Send writes one message and flushes.
func (c *Conn) Send(m *Message) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.writeLocked(m); err != nil {
		return err
	}
	return c.w.Flush()
}

// Close shuts the read side, flushes what it can, then closes the socket.
// Errors during teardown are ignored. Close unblocks a pending ReadMessage.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if tc, ok := c.conn.(*net.TCPConn); ok {
			tc.CloseRead()
		}
		if c.wmu.TryLock() {
			c.conn.SetWriteDeadline(time.Now().Add(closeFlushWait))
			c.w.Flush()
			c.wmu.Unlock()
		}
		c.conn.Close()
	})
	return nil
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }
