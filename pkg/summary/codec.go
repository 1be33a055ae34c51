package summary

import (
	"fmt"
	"go/token"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/mod/semver"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/critpair"
	"github.com/diego200052/lockpair/pkg/event"
	"github.com/diego200052/lockpair/pkg/lockid"
)

// SchemaVersion is this package's wire format version. It must parse as a
// valid semver tag (golang.org/x/mod/semver requires the leading "v").
// Bump the minor version for backward-compatible additions and the major
// version for breaking wire changes.
const SchemaVersion = "v1.0.0"

// CompatibleVersion reports whether a summary encoded under producerVersion
// can be decoded by this package: same major version, and a producer minor
// version no newer than SchemaVersion's (an older reader may not know about
// fields a newer writer added, but those additions must themselves be
// backward compatible by convention).
func CompatibleVersion(producerVersion string) bool {
	if semver.Major(producerVersion) != semver.Major(SchemaVersion) {
		return false
	}
	return semver.Compare(semver.MajorMinor(producerVersion), semver.MajorMinor(SchemaVersion)) <= 0
}

// wire mirrors Summary with exported fields msgpack can encode directly;
// event.Stack and critpair.Key keep their fields private to protect their
// invariants (sortedness, dedup), so the codec translates through
// this flat shape rather than tagging the domain types themselves.
type wire struct {
	Version string

	Proc string

	Held       []wireAcquisition
	Pairs      []wireCriticalPair
	Guards     map[string]wireGuard
	OnUIThread int
}

type wireAcquisition struct {
	LockOwner string
	LockPath  string
	ProcName  string
	Loc       int
	Anchor    int
	Exclusive bool
}

type wireFrame struct {
	Callee string
	Loc    int
}

type wireCriticalPair struct {
	Held       []wireAcquisition
	EventKind  int
	LockOwner  string
	LockPath   string
	Desc       string
	Severity   int
	Loc        int
	ThreadFlag bool
	ProcName   string
	Trace      []wireFrame
}

type wireGuard struct {
	LockOwner string
	LockPath  string
	Locked    bool
}

// MarshalBinary implements encoding.BinaryMarshaler via msgpack, the
// serialization hook every wire-facing type exposes.
func (s Summary) MarshalBinary() ([]byte, error) {
	w := toWire(s)
	return msgpack.Marshal(&w)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects an
// incompatible SchemaVersion rather than attempting a best-effort decode.
func (s *Summary) UnmarshalBinary(data []byte) error {
	var w wire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return err
	}
	if !CompatibleVersion(w.Version) {
		return fmt.Errorf("summary: incompatible schema version %s (reader is %s)", w.Version, SchemaVersion)
	}
	*s = fromWire(w)
	return nil
}

func toWire(s Summary) wire {
	w := wire{Version: SchemaVersion, Proc: s.Proc, OnUIThread: int(s.State.OnUIThread)}

	for _, a := range s.State.Held.Acquisitions() {
		w.Held = append(w.Held, wireAcquisitionOf(a))
	}

	for _, cp := range s.State.CriticalPairs {
		w.Pairs = append(w.Pairs, wireCriticalPairOf(cp))
	}

	w.Guards = make(map[string]wireGuard, len(s.State.Guards))
	for k, g := range s.State.Guards {
		w.Guards[k] = wireGuard{LockOwner: g.Bound.Owner, LockPath: g.Bound.Path.String(), Locked: g.Locked}
	}

	return w
}

func wireAcquisitionOf(a event.Acquisition) wireAcquisition {
	return wireAcquisition{
		LockOwner: a.Lock.Owner,
		LockPath:  a.Lock.Path.String(),
		ProcName:  a.ProcName,
		Loc:       int(a.Loc),
		Anchor:    int(a.Anchor),
		Exclusive: a.Exclusive,
	}
}

func wireCriticalPairOf(cp critpair.CriticalPair) wireCriticalPair {
	w := wireCriticalPair{
		EventKind:  int(cp.Event.Kind),
		Desc:       cp.Event.Description,
		Severity:   int(cp.Event.Severity),
		Loc:        int(cp.Loc),
		ThreadFlag: cp.ThreadFlag,
		ProcName:   cp.ProcName,
	}
	if cp.Event.Kind == event.KindLockAcquire {
		w.LockOwner = cp.Event.Lock.Owner
		w.LockPath = cp.Event.Lock.Path.String()
	}
	for _, a := range cp.Acquisitions.Acquisitions() {
		w.Held = append(w.Held, wireAcquisitionOf(a))
	}
	for _, f := range cp.Trace {
		w.Trace = append(w.Trace, wireFrame{Callee: f.Callee, Loc: int(f.Loc)})
	}
	return w
}

// fromWire is a best-effort reconstruction: lock paths are stored as their
// rendered string form on the wire, opaque to anything but this package,
// so locks decoded off the wire carry
// a synthetic global-rooted path built from that string rather than the
// original AccessPath structure. This is sufficient for a summary that is
// only ever consumed by this package's own store — a cross-process summary
// cache keys purely on these rendered identities.
func fromWire(w wire) Summary {
	held := event.Empty
	for _, a := range w.Held {
		held = held.Push(acquisitionFromWire(a))
	}

	guards := astate.GuardMap{}
	for k, g := range w.Guards {
		guards[k] = astate.GuardState{Bound: lockFromWire(g.LockOwner, g.LockPath), Locked: g.Locked}
	}

	state := astate.State{
		Held:          held,
		CriticalPairs: map[critpair.Key]critpair.CriticalPair{},
		Guards:        guards,
		OnUIThread:    astate.Tri(w.OnUIThread),
	}
	for _, p := range w.Pairs {
		cp := criticalPairFromWire(p)
		state = state.AddCriticalPair(cp)
	}

	return Summary{Proc: w.Proc, State: state}
}

func lockFromWire(owner, path string) lockid.Lock {
	return lockid.Lock{Path: lockid.NewGlobalPath(path), Owner: owner}
}

func acquisitionFromWire(a wireAcquisition) event.Acquisition {
	return event.Acquisition{
		Lock:      lockFromWire(a.LockOwner, a.LockPath),
		ProcName:  a.ProcName,
		Loc:       token.Pos(a.Loc),
		Anchor:    event.AnchorKind(a.Anchor),
		Exclusive: a.Exclusive,
	}
}

func criticalPairFromWire(w wireCriticalPair) critpair.CriticalPair {
	held := event.Empty
	for _, a := range w.Held {
		held = held.Push(acquisitionFromWire(a))
	}

	var ev event.Event
	switch event.Kind(w.EventKind) {
	case event.KindLockAcquire:
		ev = event.LockAcquire(lockFromWire(w.LockOwner, w.LockPath))
	case event.KindMayBlock:
		ev = event.MayBlock(w.Desc, event.Severity(w.Severity))
	case event.KindStrictModeCall:
		ev = event.StrictModeCall(w.Desc)
	}

	cp := critpair.New(held, ev, token.Pos(w.Loc), w.ThreadFlag, w.ProcName)
	for _, f := range w.Trace {
		cp.Trace = append(cp.Trace, critpair.Frame{Callee: f.Callee, Loc: token.Pos(f.Loc)})
	}
	return cp
}
