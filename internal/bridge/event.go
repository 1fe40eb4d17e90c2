package bridge

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// The game's event message, protobuf wire format. Field numbers follow the
// game's message definition:
//
//	1 event_id    uint64
//	2 event_type  uint32
//	3 x           int32
//	4 y           int32
//	5 vx          int32
//	6 vy          int32
//	7 hx          int32 (unused, never set)
//	8 hy          int32 (unused, never set)
//	9 time        uint32 (always 180)
//	10 terminate  bool
//
// Encoded directly with protowire: the message shape is fixed and tiny, so
// generated code buys nothing here. Zero-valued fields are omitted, matching
// proto3 serialization byte for byte.
const (
	fieldEventID   = 1
	fieldEventType = 2
	fieldX         = 3
	fieldY         = 4
	fieldVX        = 5
	fieldVY        = 6
	fieldTime      = 9
	fieldTerminate = 10
)

// eventTime is a constant in every frame the game receives from an injector.
const eventTime = 180

func appendUintField(buf []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	return protowire.AppendVarint(buf, v)
}

func appendIntField(buf []byte, num protowire.Number, v int) []byte {
	if v == 0 {
		return buf
	}
	buf = protowire.AppendTag(buf, num, protowire.VarintType)
	// int32 fields carry negatives as sign-extended 64-bit varints.
	return protowire.AppendVarint(buf, uint64(int64(v)))
}

func encodeEvent(eventID uint64, eventType, x, y, vx, vy int, terminate bool) []byte {
	var buf []byte
	buf = appendUintField(buf, fieldEventID, eventID)
	buf = appendIntField(buf, fieldEventType, eventType)
	buf = appendIntField(buf, fieldX, x)
	buf = appendIntField(buf, fieldY, y)
	buf = appendIntField(buf, fieldVX, vx)
	buf = appendIntField(buf, fieldVY, vy)
	buf = appendUintField(buf, fieldTime, eventTime)
	if terminate {
		buf = protowire.AppendTag(buf, fieldTerminate, protowire.VarintType)
		buf = protowire.AppendVarint(buf, 1)
	}
	return buf
}
