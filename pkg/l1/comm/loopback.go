package comm

import (
	"io"
	"sync"
)

// Loopback is one end of an in-process packet link.
type Loopback struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once *sync.Once
}

// NewLoopback creates both ends of a link. Closing either end closes both.
func NewLoopback() (*Loopback, *Loopback) {
	ab, ba := make(chan []byte, 16), make(chan []byte, 16)
	done, once := make(chan struct{}), &sync.Once{}
	return &Loopback{in: ba, out: ab, done: done, once: once},
		&Loopback{in: ab, out: ba, done: done, once: once}
}

// ReadPacket implements PacketReader.
func (l *Loopback) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-l.in:
		return pkt, nil
	case <-l.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (l *Loopback) WritePacket(pkt []byte) error {
	select {
	case <-l.done:
		return io.ErrClosedPipe
	default:
	}
	select {
	case l.out <- append([]byte(nil), pkt...):
		return nil
	case <-l.done:
		return io.ErrClosedPipe
	}
}

// Close implements io.Closer.
func (l *Loopback) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}
