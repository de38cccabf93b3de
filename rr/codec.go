package rr

import (
	"encoding/binary"
	"fmt"
	"time"
)

// recordHeaderSize is type (4) + expiry (8) + payload length (4)
const recordHeaderSize = 16

// maxPayload rejects obviously corrupted length fields during decoding
const maxPayload = 1 << 16

// MarshalAll serializes a record set into one flat buffer. The VPN bridge
// uses this to snapshot a set whose backing storage it does not own, and the
// in-memory namestore uses it as block payload.
func MarshalAll(records []*Record) []byte {
	size := 4
	for _, r := range records {
		size += recordHeaderSize + len(r.Data)
	}

	out := make([]byte, 4, size)
	binary.BigEndian.PutUint32(out, uint32(len(records)))

	for _, r := range records {
		var hdr [recordHeaderSize]byte

		binary.BigEndian.PutUint32(hdr[0:], uint32(r.Type))
		binary.BigEndian.PutUint64(hdr[4:], uint64(expiryMillis(r.Expiry)))
		binary.BigEndian.PutUint32(hdr[12:], uint32(len(r.Data)))

		out = append(out, hdr[:]...)
		out = append(out, r.Data...)
	}

	return out
}

// UnmarshalAll restores a record set serialized by MarshalAll
func UnmarshalAll(data []byte) ([]*Record, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("record set truncated (%d bytes)", len(data))
	}

	count := binary.BigEndian.Uint32(data)
	if count > maxPayload {
		return nil, fmt.Errorf("implausible record count %d", count)
	}

	records := make([]*Record, 0, count)
	off := 4

	for i := uint32(0); i < count; i++ {
		if len(data) < off+recordHeaderSize {
			return nil, fmt.Errorf("record %d truncated", i)
		}

		t := Type(binary.BigEndian.Uint32(data[off:]))
		expiry := millisExpiry(int64(binary.BigEndian.Uint64(data[off+4:])))
		size := binary.BigEndian.Uint32(data[off+12:])
		off += recordHeaderSize

		if size > maxPayload || len(data) < off+int(size) {
			return nil, fmt.Errorf("record %d payload truncated", i)
		}

		payload := make([]byte, size)
		copy(payload, data[off:off+int(size)])
		off += int(size)

		records = append(records, &Record{Type: t, Data: payload, Expiry: expiry})
	}

	return records, nil
}

func expiryMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func millisExpiry(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms)
}
