package entity

import (
	"strconv"

	"github.com/yohamta/donburi"
)

// Handle is an opaque reference to an entity. Handles compare equal iff they
// refer to the same entity generation. The zero Handle never resolves.
type Handle struct {
	e donburi.Entity
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.e == donburi.Entity(0) }

// ID returns the wire form of h for clients that echo handles back.
func (h Handle) ID() uint64 { return uint64(h.e) }

// HandleFromID rebuilds a Handle from its wire form. The result may be stale;
// Registry.Valid is the only authority on liveness.
func HandleFromID(id uint64) Handle { return Handle{e: donburi.Entity(id)} }

// String returns the decimal wire id.
func (h Handle) String() string { return strconv.FormatUint(h.ID(), 10) }
