package lockid

import "fmt"

// Lock is the canonical key for a monitor: a normalized access path plus
// the declared type of its root, used as an owner-class attribute for
// locating sibling methods in the report engine.
type Lock struct {
	Path  AccessPath
	Owner string // declared type of Path.Root, "" if unknown/unresolved
}

// FromAccessPath builds a Lock from an already-resolved access path and the
// declared type name of its root. Returns false if the path's root cannot
// denote a lock: only formal-parameter and global roots are accepted here
// (class-literal locks are built with NewClassLock instead).
func FromAccessPath(p AccessPath, owner string) (Lock, bool) {
	switch p.Root.Kind {
	case RootParam, RootGlobal:
		return Lock{Path: Normalize(p), Owner: owner}, true
	default:
		return Lock{}, false
	}
}

// NewClassLock constructs the synthetic "class lock" used for
// static-synchronized methods and synchronized(Foo.class) blocks: its root
// is a fresh identifier tagged with the class name and its path is empty.
func NewClassLock(className string) Lock {
	return Lock{Path: NewClassLiteralPath(className), Owner: className}
}

// IsClassLock reports whether l is a synthetic class-literal lock (its root
// has an empty path — used by the report engine's symmetry-breaking rule,
// which always reports class-lock pairs in one direction since the reverse
// pairing is structurally inaccessible).
func (l Lock) IsClassLock() bool {
	return l.Path.Root.Kind == RootClassLiteral && len(l.Path.Steps) == 0
}

// Equal reports whether two locks denote the same monitor.
func (l Lock) Equal(o Lock) bool {
	return l.Path.Equal(o.Path)
}

// Less imposes Lock's total order, used for stable iteration of held sets
// and for map keys.
func (l Lock) Less(o Lock) bool {
	return l.Path.Less(o.Path)
}

// TypeString is the lock's owner-class name, used by the report engine's
// symmetry-breaking comparator.
func (l Lock) TypeString() string {
	return l.Owner
}

func (l Lock) String() string {
	if l.Owner == "" {
		return l.Path.String()
	}
	return fmt.Sprintf("%s(%s)", l.Path.String(), l.Owner)
}

// Key returns a value usable as a Go map key. Lock itself is not
// comparable (AccessPath.Steps is a slice), so Key is its rendered form,
// owner included.
func (l Lock) Key() string { return l.String() }
