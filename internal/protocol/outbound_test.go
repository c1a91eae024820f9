package protocol

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingWriter struct {
	mu      sync.Mutex
	batches [][]*Message
	err     error
}

func (w *recordingWriter) WriteBatch(msgs []*Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, msgs)
	return w.err
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.batches)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOutboundBatchesUntilFlush(t *testing.T) {
	w := &recordingWriter{}
	o := NewOutbound(w)
	defer o.Close()

	for i := 0; i < 3; i++ {
		if err := o.Enqueue(NewMessage(SetPhaserPosition).PutShort(int16(i))); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	time.Sleep(20 * time.Millisecond)
	if w.count() != 0 {
		t.Fatal("nothing should be written before FlushAll")
	}
	if o.Pending() != 3 {
		t.Errorf("pending = %d, want 3", o.Pending())
	}

	if err := o.FlushAll(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	waitFor(t, func() bool { return w.count() == 1 })

	w.mu.Lock()
	batch := w.batches[0]
	w.mu.Unlock()
	if len(batch) != 3 {
		t.Fatalf("batch size = %d, want 3", len(batch))
	}
	for i, m := range batch {
		r, _ := NewReader(m.Bytes())
		if got := r.Short(); got != int16(i) {
			t.Errorf("batch[%d] = %d, order not preserved", i, got)
		}
	}
}

func TestOutboundReraisesWriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	w := &recordingWriter{err: boom}
	o := NewOutbound(w)
	defer o.Close()

	o.Send(NewMessage(SetPlayerStatus))
	waitFor(t, func() bool { return w.count() == 1 })

	var err error
	waitFor(t, func() bool {
		err = o.Enqueue(NewMessage(SetPlayerStatus))
		return err != nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestOutboundClosed(t *testing.T) {
	o := NewOutbound(&recordingWriter{})
	o.Close()
	o.Close()
	if err := o.Enqueue(NewMessage(Say)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("enqueue after close = %v, want ErrQueueClosed", err)
	}
	if err := o.FlushAll(); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("flush after close = %v, want ErrQueueClosed", err)
	}
}
