// Package object implements the opaque, immutable payload that every
// index in this library stores and every Space interprets.
package object

import "encoding/binary"

// EmptyLabel is the sentinel label value for objects with no class label.
const EmptyLabel int32 = -1

// headerSize is the size in bytes of the fixed Object header (id, label,
// data length), 8-byte aligned so distance kernels can safely use aligned
// loads on the payload that follows it when serialized.
const headerSize = 16

// Object is an opaque, space-specific payload with a fixed header. It is
// either a view into a caller-owned buffer (Borrowed) or owns a heap
// buffer it allocated when constructed (Owned); indexes borrow objects
// and never extend their lifetime beyond the caller's guarantee.
type Object struct {
	id    int32
	label int32
	data  []byte
	owned bool
}

// New constructs a Borrowed Object: it stores data directly without
// copying. The caller must not mutate data for as long as any index
// holds this Object.
func New(id, label int32, data []byte) *Object {
	return &Object{id: id, label: label, data: data, owned: false}
}

// NewOwned constructs an Owned Object: it copies data into a freshly
// allocated buffer, so the caller is free to reuse or mutate its own
// buffer afterwards.
func NewOwned(id, label int32, data []byte) *Object {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Object{id: id, label: label, data: buf, owned: true}
}

// ID returns the caller-assigned identity of the object.
func (o *Object) ID() int32 { return o.id }

// Label returns the object's class label, or EmptyLabel if unset.
func (o *Object) Label() int32 { return o.label }

// Data returns the space-specific payload bytes.
func (o *Object) Data() []byte { return o.data }

// DataLength returns the byte length of the payload.
func (o *Object) DataLength() uint64 { return uint64(len(o.data)) }

// Owned reports whether this Object owns its backing buffer.
func (o *Object) Owned() bool { return o.owned }

// Bytes serializes the Object's header and payload into the on-wire
// layout described by the save/load format: id, label, data_length,
// then data, all little-endian.
func (o *Object) Bytes() []byte {
	buf := make([]byte, headerSize+len(o.data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(o.id))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(o.label))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(o.data)))
	copy(buf[headerSize:], o.data)
	return buf
}

// FromBytes parses the on-wire layout produced by Bytes. The returned
// Object borrows the tail of buf as its payload.
func FromBytes(buf []byte) (*Object, int, error) {
	if len(buf) < headerSize {
		return nil, 0, errShortHeader
	}
	id := int32(binary.LittleEndian.Uint32(buf[0:4]))
	label := int32(binary.LittleEndian.Uint32(buf[4:8]))
	length := binary.LittleEndian.Uint64(buf[8:16])
	end := headerSize + int(length)
	if uint64(end-headerSize) != length || len(buf) < end {
		return nil, 0, errTruncatedPayload
	}
	return New(id, label, buf[headerSize:end]), end, nil
}
