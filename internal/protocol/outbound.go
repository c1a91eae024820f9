package protocol

import (
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("protocol: outbound queue closed")

// BatchWriter writes a burst of messages and flushes the stream.
type BatchWriter interface {
	WriteBatch(msgs []*Message) error
}

// Outbound decouples producers from the stream. Enqueue only appends;
// the write pump wakes on FlushAll, writes everything queued so far as one
// burst and flushes. A write error is kept and returned to the next caller
// of Enqueue or FlushAll.
type Outbound struct {
	w BatchWriter

	mu     sync.Mutex
	queue  []*Message
	err    error
	closed bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewOutbound starts the write pump for w.
func NewOutbound(w BatchWriter) *Outbound {
	o := &Outbound{
		w:    w,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	o.wg.Add(1)
	go o.writePump()
	return o
}

// Enqueue appends m without writing it.
func (o *Outbound) Enqueue(m *Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.takeErrLocked(); err != nil {
		return err
	}
	o.queue = append(o.queue, m)
	return nil
}

// FlushAll asks the pump to drain everything queued so far.
func (o *Outbound) FlushAll() error {
	o.mu.Lock()
	err := o.takeErrLocked()
	o.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// Send enqueues m and flushes.
func (o *Outbound) Send(m *Message) error {
	if err := o.Enqueue(m); err != nil {
		return err
	}
	return o.FlushAll()
}

func (o *Outbound) takeErrLocked() error {
	if o.err != nil {
		err := o.err
		o.err = nil
		return err
	}
	if o.closed {
		return ErrQueueClosed
	}
	return nil
}

// Pending is the number of queued, unwritten messages.
func (o *Outbound) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Close stops the pump. Messages still queued are discarded.
func (o *Outbound) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.queue = nil
	o.mu.Unlock()
	close(o.done)
	o.wg.Wait()
}

func (o *Outbound) writePump() {
	defer o.wg.Done()
	for {
		select {
		case <-o.wake:
		case <-o.done:
			return
		}

		o.mu.Lock()
		batch := o.queue
		o.queue = nil
		o.mu.Unlock()
		if len(batch) == 0 {
			continue
		}

		if err := o.w.WriteBatch(batch); err != nil {
			o.mu.Lock()
			if o.err == nil {
				o.err = err
			}
			o.mu.Unlock()
		}
	}
}
