package entity

import (
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
	"github.com/yohamta/donburi/filter"
	"go.uber.org/zap"
)

// Spec describes an entity to create.
type Spec struct {
	Identifier string
	Pos        Vec3
	Rot        Rotation
	// MaxHealth > 0 attaches a health component starting at full health.
	MaxHealth int
	// Image is the turn order portrait; empty means no turn order component.
	Image string
}

// Registry owns the ECS world and answers the queries the arena core needs.
//
// Registry is not safe for concurrent use; it is owned by the tick loop.
type Registry struct {
	world  donburi.World
	all    *donburi.Query
	living *donburi.Query
	// live guards world lookups against handles rebuilt from untrusted ids.
	live   map[donburi.Entity]struct{}
	logger *zap.Logger
}

// NewRegistry creates an empty Registry.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		world:  donburi.NewWorld(),
		all:    donburi.NewQuery(filter.Contains(Identity)),
		living: donburi.NewQuery(filter.Contains(Health)),
		live:   make(map[donburi.Entity]struct{}),
		logger: logger,
	}
}

// Create spawns an entity from spec.
//
// Postcondition: Returns a Handle for which Valid is true.
func (r *Registry) Create(spec Spec) Handle {
	var h Handle
	switch {
	case spec.MaxHealth > 0 && spec.Image != "":
		h = Handle{e: r.world.Create(Identity, Transform, Health, Nameplate, TurnOrder)}
	case spec.MaxHealth > 0:
		h = Handle{e: r.world.Create(Identity, Transform, Health, Nameplate)}
	default:
		h = Handle{e: r.world.Create(Identity, Transform)}
	}
	r.live[h.e] = struct{}{}
	entry := r.world.Entry(h.e)
	Identity.SetValue(entry, IdentityData{Identifier: spec.Identifier})
	Transform.SetValue(entry, TransformData{Pos: spec.Pos, Rot: spec.Rot})
	if spec.MaxHealth > 0 {
		Health.SetValue(entry, HealthData{Current: spec.MaxHealth, Max: spec.MaxHealth})
		r.refreshNameplate(entry)
	}
	if spec.Image != "" {
		TurnOrder.SetValue(entry, TurnOrderData{Image: spec.Image})
	}
	r.logger.Debug("entity created",
		zap.Stringer("handle", h),
		zap.String("identifier", spec.Identifier),
	)
	return h
}

// Valid reports whether h resolves to a live entity.
func (r *Registry) Valid(h Handle) bool {
	if h.IsZero() {
		return false
	}
	if _, ok := r.live[h.e]; !ok {
		return false
	}
	return r.world.Valid(h.e)
}

// Destroy removes h from the world. Destroying an invalid handle is a no-op.
func (r *Registry) Destroy(h Handle) {
	if !r.Valid(h) {
		return
	}
	r.world.Remove(h.e)
	delete(r.live, h.e)
	r.logger.Debug("entity destroyed", zap.Stringer("handle", h))
}

// DestroyAllExcept removes every entity other than keep.
//
// Postcondition: Only keep (if it was valid) remains.
func (r *Registry) DestroyAllExcept(keep Handle) int {
	var doomed []donburi.Entity
	r.all.Each(r.world, func(entry *donburi.Entry) {
		if entry.Entity() != keep.e {
			doomed = append(doomed, entry.Entity())
		}
	})
	for _, e := range doomed {
		r.world.Remove(e)
		delete(r.live, e)
	}
	return len(doomed)
}

// Count returns the number of live entities.
func (r *Registry) Count() int {
	n := 0
	r.all.Each(r.world, func(*donburi.Entry) { n++ })
	return n
}

// Identifier returns the entity type name of h.
func (r *Registry) Identifier(h Handle) (string, bool) {
	entry, ok := r.entry(h, Identity)
	if !ok {
		return "", false
	}
	return Identity.Get(entry).Identifier, true
}

// Position returns the world position of h.
func (r *Registry) Position(h Handle) (Vec3, bool) {
	entry, ok := r.entry(h, Transform)
	if !ok {
		return Vec3{}, false
	}
	return Transform.Get(entry).Pos, true
}

// Health returns the current and max health of h. ok is false if h is
// invalid or has no health component.
func (r *Registry) Health(h Handle) (current, max int, ok bool) {
	entry, ok := r.entry(h, Health)
	if !ok {
		return 0, 0, false
	}
	hd := Health.Get(entry)
	return hd.Current, hd.Max, true
}

// SetHealth stores current health for h and refreshes its nameplate.
// No clamping is applied here.
func (r *Registry) SetHealth(h Handle, current int) {
	entry, ok := r.entry(h, Health)
	if !ok {
		return
	}
	Health.Get(entry).Current = current
	r.refreshNameplate(entry)
}

// Nameplate returns the floating name of h.
func (r *Registry) Nameplate(h Handle) (string, bool) {
	entry, ok := r.entry(h, Nameplate)
	if !ok {
		return "", false
	}
	return Nameplate.Get(entry).Name, true
}

// TurnOrder returns the turn order component of h.
func (r *Registry) TurnOrder(h Handle) (TurnOrderData, bool) {
	entry, ok := r.entry(h, TurnOrder)
	if !ok {
		return TurnOrderData{}, false
	}
	return *TurnOrder.Get(entry), true
}

// SetTurnOrder records the turn order slot of h.
func (r *Registry) SetTurnOrder(h Handle, order int) {
	entry, ok := r.entry(h, TurnOrder)
	if !ok {
		return
	}
	TurnOrder.Get(entry).Order = order
}

// Reap returns every entity whose health has dropped to zero or below and
// which has not been reported before. Each entity is reported at most once.
func (r *Registry) Reap() []Handle {
	var dead []Handle
	r.living.Each(r.world, func(entry *donburi.Entry) {
		if entry.HasComponent(fainted) {
			return
		}
		if Health.Get(entry).Current <= 0 {
			dead = append(dead, Handle{e: entry.Entity()})
		}
	})
	for _, h := range dead {
		r.world.Entry(h.e).AddComponent(fainted)
	}
	return dead
}

func (r *Registry) entry(h Handle, c component.IComponentType) (*donburi.Entry, bool) {
	if !r.Valid(h) {
		return nil, false
	}
	entry := r.world.Entry(h.e)
	if !entry.HasComponent(c) {
		return nil, false
	}
	return entry, true
}

func (r *Registry) refreshNameplate(entry *donburi.Entry) {
	hd := Health.Get(entry)
	Nameplate.SetValue(entry, NameplateData{
		Name:       fmt.Sprintf("HP: %d / %d", hd.Current, hd.Max),
		AlwaysShow: true,
	})
}
