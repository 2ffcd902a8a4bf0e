package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/rangetrk/pkg/framework"
	"github.com/robotalks/rangetrk/pkg/tracker"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// TrackerStatusQuery reads the registers without clocking.
type TrackerStatusQuery struct {
}

// NewMessage implements Message.
func (m *TrackerStatusQuery) NewMessage() fx.Message { return &TrackerStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *TrackerStatusQuery) TypeID() uint32 { return TrackerStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *TrackerStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TrackerStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TrackerStatusQuery) Reset() { *m = TrackerStatusQuery{} }

// String implements proto.Message.
func (m *TrackerStatusQuery) String() string { return proto.CompactTextString(m) }

// TrackerStatus is the register set of a tracker.
type TrackerStatus struct {
	State uint32 `protobuf:"varint,1,opt,name=state,proto3" json:"state,omitempty"`
	Range uint32 `protobuf:"varint,2,opt,name=range,proto3" json:"range,omitempty"`
	Error bool   `protobuf:"varint,3,opt,name=error,proto3" json:"error,omitempty"`
	High  uint32 `protobuf:"varint,4,opt,name=high,proto3" json:"high,omitempty"`
	Low   uint32 `protobuf:"varint,5,opt,name=low,proto3" json:"low,omitempty"`
	Cycle uint64 `protobuf:"varint,6,opt,name=cycle,proto3" json:"cycle,omitempty"`
}

// StatusFrom builds a TrackerStatus from tracker registers.
func StatusFrom(regs tracker.Registers, cycle uint64) *TrackerStatus {
	out := regs.Outputs()
	return &TrackerStatus{
		State: uint32(regs.State),
		Range: uint32(out.Range),
		Error: out.Error,
		High:  uint32(regs.Watermarks.High),
		Low:   uint32(regs.Watermarks.Low),
		Cycle: cycle,
	}
}

// SessionState converts State back to tracker.SessionState.
func (m *TrackerStatus) SessionState() tracker.SessionState {
	return tracker.SessionState(m.State)
}

// NewMessage implements Message.
func (m *TrackerStatus) NewMessage() fx.Message { return &TrackerStatus{} }

// TypeID implements SerializableMessage.
func (m *TrackerStatus) TypeID() uint32 { return TrackerStatusTypeID }

// Serializable implements SerializableMessage.
func (m *TrackerStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TrackerStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TrackerStatus) Reset() { *m = TrackerStatus{} }

// String implements proto.Message.
func (m *TrackerStatus) String() string { return proto.CompactTextString(m) }

// TrackerTick clocks the tracker Cycles times (at least once) with
// the given inputs held. The reply is TrackerStatus.
type TrackerTick struct {
	Sample uint32 `protobuf:"varint,1,opt,name=sample,proto3" json:"sample,omitempty"`
	Go     bool   `protobuf:"varint,2,opt,name=go,proto3" json:"go,omitempty"`
	Finish bool   `protobuf:"varint,3,opt,name=finish,proto3" json:"finish,omitempty"`
	Cycles uint32 `protobuf:"varint,4,opt,name=cycles,proto3" json:"cycles,omitempty"`
}

// Inputs converts to tracker inputs.
func (m *TrackerTick) Inputs() tracker.Inputs {
	return tracker.Inputs{Sample: uint8(m.Sample), Go: m.Go, Finish: m.Finish}
}

// NewMessage implements Message.
func (m *TrackerTick) NewMessage() fx.Message { return &TrackerTick{} }

// TypeID implements SerializableMessage.
func (m *TrackerTick) TypeID() uint32 { return TrackerTickTypeID }

// Serializable implements SerializableMessage.
func (m *TrackerTick) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TrackerTick) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TrackerTick) Reset() { *m = TrackerTick{} }

// String implements proto.Message.
func (m *TrackerTick) String() string { return proto.CompactTextString(m) }

// TrackerDrive sets the input levels held while the device free-runs.
type TrackerDrive struct {
	Sample uint32 `protobuf:"varint,1,opt,name=sample,proto3" json:"sample,omitempty"`
	Go     bool   `protobuf:"varint,2,opt,name=go,proto3" json:"go,omitempty"`
	Finish bool   `protobuf:"varint,3,opt,name=finish,proto3" json:"finish,omitempty"`
}

// Inputs converts to tracker inputs.
func (m *TrackerDrive) Inputs() tracker.Inputs {
	return tracker.Inputs{Sample: uint8(m.Sample), Go: m.Go, Finish: m.Finish}
}

// NewMessage implements Message.
func (m *TrackerDrive) NewMessage() fx.Message { return &TrackerDrive{} }

// TypeID implements SerializableMessage.
func (m *TrackerDrive) TypeID() uint32 { return TrackerDriveTypeID }

// Serializable implements SerializableMessage.
func (m *TrackerDrive) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TrackerDrive) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TrackerDrive) Reset() { *m = TrackerDrive{} }

// String implements proto.Message.
func (m *TrackerDrive) String() string { return proto.CompactTextString(m) }

// TrackerReset asserts reset for one cycle.
type TrackerReset struct {
}

// NewMessage implements Message.
func (m *TrackerReset) NewMessage() fx.Message { return &TrackerReset{} }

// TypeID implements SerializableMessage.
func (m *TrackerReset) TypeID() uint32 { return TrackerResetTypeID }

// Serializable implements SerializableMessage.
func (m *TrackerReset) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TrackerReset) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TrackerReset) Reset() { *m = TrackerReset{} }

// String implements proto.Message.
func (m *TrackerReset) String() string { return proto.CompactTextString(m) }

// TrackerEvent is broadcast when the visible state of a tracker changes.
type TrackerEvent struct {
	Event  string         `protobuf:"bytes,1,opt,name=event,proto3" json:"event,omitempty"`
	Status *TrackerStatus `protobuf:"bytes,2,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *TrackerEvent) NewMessage() fx.Message { return &TrackerEvent{} }

// TypeID implements SerializableMessage.
func (m *TrackerEvent) TypeID() uint32 { return TrackerEventTypeID }

// Serializable implements SerializableMessage.
func (m *TrackerEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TrackerEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TrackerEvent) Reset() { *m = TrackerEvent{} }

// String implements proto.Message.
func (m *TrackerEvent) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupTracker uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID          uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID         uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	TrackerStatusQueryTypeID uint32 = GroupTracker | 0x0000
	TrackerStatusTypeID      uint32 = TrackerStatusQueryTypeID | TypeIDMaskReply
	TrackerTickTypeID        uint32 = GroupTracker | 0x0001
	TrackerDriveTypeID       uint32 = GroupTracker | 0x0002
	TrackerResetTypeID       uint32 = GroupTracker | 0x0003
	TrackerEventTypeID       uint32 = TypeIDKindEvent | GroupTracker | 0x0010
)

// MessageTypes are predefined mapping of type ID to messages.
var MessageTypes = map[uint32]SerializableMessage{
	CommandOKTypeID:          (*CommandOK)(nil),
	CommandErrTypeID:         (*CommandErr)(nil),
	TrackerStatusQueryTypeID: (*TrackerStatusQuery)(nil),
	TrackerStatusTypeID:      (*TrackerStatus)(nil),
	TrackerTickTypeID:        (*TrackerTick)(nil),
	TrackerDriveTypeID:       (*TrackerDrive)(nil),
	TrackerResetTypeID:       (*TrackerReset)(nil),
	TrackerEventTypeID:       (*TrackerEvent)(nil),
}
