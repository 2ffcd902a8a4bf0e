// Package msgs provides the device protocol and all message schemas.
package msgs

// Every message travels in a Typed envelope carrying the type ID and, for
// commands and replies, the sequence number matching a reply to its command.
// Payloads are protobuf (proto3) encoded.
//
// Producer: device
// Consumer: clients (CLI, monitor)
