package kernel

import (
	"encoding/binary"
	"errors"
)

// snapshotVersion is incremented whenever the binary layout below changes.
const snapshotVersion = 1

// threadSnapshotSize is the per-thread record size written by Snapshot.
const threadSnapshotSize = 1 + 4 + 4 + 4 // state, id, savedSP, remainingSleepTicks

// Snapshot is a versioned, fixed-layout projection of a scheduler's
// visible state: each registered thread's id, state, saved stack pointer,
// and remaining sleep ticks, plus the scheduler's own bookkeeping fields.
// It exists for host-side diagnostics and scenario comparison (cmd/ksim,
// tests) — §6.3 rules out persisted kernel state, not a read-only
// projection of live state taken by tooling outside the kernel.
//
// Adapted from the reference codebase's Serialize/Deserialize idiom
// (serialize.go): a leading version byte, a fixed per-record size, and
// encoding/binary rather than encoding/gob or reflection-based codecs.
type Snapshot struct {
	LastTick uint32
	Locked   bool
	ActiveID uint32
	Threads  []ThreadSnapshot
}

// ThreadSnapshot is one thread's projected state within a Snapshot.
type ThreadSnapshot struct {
	ID                  uint32
	State               ThreadState
	SavedSP             uint32
	RemainingSleepTicks int32
}

// Snapshot projects the scheduler's current visible state. It does not
// mutate the scheduler.
func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		LastTick: s.lastTick,
		Locked:   s.locked,
		Threads:  make([]ThreadSnapshot, 0, s.count),
	}
	if s.active != nil {
		snap.ActiveID = s.active.thread.id
	}
	for i := uint8(0); i < s.count; i++ {
		tcb := &s.table[i]
		snap.Threads = append(snap.Threads, ThreadSnapshot{
			ID:                  tcb.thread.id,
			State:               tcb.thread.state,
			SavedSP:             tcb.savedSP,
			RemainingSleepTicks: tcb.remainingSleepTicks,
		})
	}
	return snap
}

// Size returns the number of bytes Marshal will produce for snap.
func (snap Snapshot) Size() int {
	return 1 + 4 + 1 + 4 + 4 + len(snap.Threads)*threadSnapshotSize
}

// Marshal encodes snap into buf, which must be at least snap.Size() bytes.
func (snap Snapshot) Marshal(buf []byte) error {
	if len(buf) < snap.Size() {
		return errors.New("kernel: snapshot buffer too small")
	}
	be := binary.BigEndian
	buf[0] = snapshotVersion
	off := 1
	be.PutUint32(buf[off:], snap.LastTick)
	off += 4
	buf[off] = boolByte(snap.Locked)
	off++
	be.PutUint32(buf[off:], snap.ActiveID)
	off += 4
	be.PutUint32(buf[off:], uint32(len(snap.Threads)))
	off += 4
	for _, th := range snap.Threads {
		buf[off] = byte(th.State)
		off++
		be.PutUint32(buf[off:], th.ID)
		off += 4
		be.PutUint32(buf[off:], th.SavedSP)
		off += 4
		be.PutUint32(buf[off:], uint32(th.RemainingSleepTicks))
		off += 4
	}
	return nil
}

// UnmarshalSnapshot decodes a Snapshot previously produced by Marshal.
func UnmarshalSnapshot(buf []byte) (Snapshot, error) {
	var snap Snapshot
	if len(buf) < 14 {
		return snap, errors.New("kernel: snapshot buffer too small")
	}
	if buf[0] != snapshotVersion {
		return snap, errors.New("kernel: unsupported snapshot version")
	}
	be := binary.BigEndian
	off := 1
	snap.LastTick = be.Uint32(buf[off:])
	off += 4
	snap.Locked = buf[off] != 0
	off++
	snap.ActiveID = be.Uint32(buf[off:])
	off += 4
	n := be.Uint32(buf[off:])
	off += 4
	if len(buf) < off+int(n)*threadSnapshotSize {
		return snap, errors.New("kernel: snapshot buffer truncated")
	}
	snap.Threads = make([]ThreadSnapshot, n)
	for i := range snap.Threads {
		snap.Threads[i].State = ThreadState(buf[off])
		off++
		snap.Threads[i].ID = be.Uint32(buf[off:])
		off += 4
		snap.Threads[i].SavedSP = be.Uint32(buf[off:])
		off += 4
		snap.Threads[i].RemainingSleepTicks = int32(be.Uint32(buf[off:]))
		off += 4
	}
	return snap, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
