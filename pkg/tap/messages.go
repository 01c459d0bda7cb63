package tap

import "github.com/golang/protobuf/proto"

// EventMsg is the wire form of a dispatched event.
type EventMsg struct {
	Device      string    `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	Sequence    uint64    `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	TimeNanos   int64     `protobuf:"varint,3,opt,name=time_nanos,json=timeNanos,proto3" json:"time_nanos,omitempty"`
	Kind        uint32    `protobuf:"varint,4,opt,name=kind,proto3" json:"kind,omitempty"`
	X           uint32    `protobuf:"varint,5,opt,name=x,proto3" json:"x,omitempty"`
	Y           uint32    `protobuf:"varint,6,opt,name=y,proto3" json:"y,omitempty"`
	DeltaX      int32     `protobuf:"zigzag32,7,opt,name=delta_x,json=deltaX,proto3" json:"delta_x,omitempty"`
	DeltaY      int32     `protobuf:"zigzag32,8,opt,name=delta_y,json=deltaY,proto3" json:"delta_y,omitempty"`
	Handler     uint32    `protobuf:"varint,9,opt,name=handler,proto3" json:"handler,omitempty"`
	ObjectIndex uint32    `protobuf:"varint,10,opt,name=object_index,json=objectIndex,proto3" json:"object_index,omitempty"`
	Value       uint32    `protobuf:"varint,11,opt,name=value,proto3" json:"value,omitempty"`
	Width       uint32    `protobuf:"varint,12,opt,name=width,proto3" json:"width,omitempty"`
	Height      uint32    `protobuf:"varint,13,opt,name=height,proto3" json:"height,omitempty"`
	Values      []float32 `protobuf:"fixed32,14,rep,packed,name=values,proto3" json:"values,omitempty"`
}

// Reset implements proto.Message.
func (m *EventMsg) Reset() { *m = EventMsg{} }

// String implements proto.Message.
func (m *EventMsg) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*EventMsg) ProtoMessage() {}

// StatsMsg is the wire form of the transport counters.
type StatsMsg struct {
	Device        string `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	FramesSent    uint64 `protobuf:"varint,2,opt,name=frames_sent,json=framesSent,proto3" json:"frames_sent,omitempty"`
	BytesSent     uint64 `protobuf:"varint,3,opt,name=bytes_sent,json=bytesSent,proto3" json:"bytes_sent,omitempty"`
	DroppedFrames uint64 `protobuf:"varint,4,opt,name=dropped_frames,json=droppedFrames,proto3" json:"dropped_frames,omitempty"`
	EventFrames   uint64 `protobuf:"varint,5,opt,name=event_frames,json=eventFrames,proto3" json:"event_frames,omitempty"`
	Desyncs       uint64 `protobuf:"varint,6,opt,name=desyncs,proto3" json:"desyncs,omitempty"`
	Overwritten   uint64 `protobuf:"varint,7,opt,name=overwritten,proto3" json:"overwritten,omitempty"`
	Overruns      uint64 `protobuf:"varint,8,opt,name=overruns,proto3" json:"overruns,omitempty"`
}

// Reset implements proto.Message.
func (m *StatsMsg) Reset() { *m = StatsMsg{} }

// String implements proto.Message.
func (m *StatsMsg) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*StatsMsg) ProtoMessage() {}
