// Package comm carries typed messages between devices and clients over any
// transport able to move whole packets. A packet is one encoded msgs.Typed.
package comm

import "io"

// PacketReader reads packets in bytes.
type PacketReader interface {
	// ReadPacket blocks until a packet arrives. io.EOF means the peer
	// is gone.
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// PacketConn is a PacketReadWriter owning a connection.
type PacketConn interface {
	PacketReadWriter
	io.Closer
}
