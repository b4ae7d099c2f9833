// Package entity is the in-process entity/component platform the arena core
// runs against. It is backed by a donburi ECS world.
package entity

import "github.com/yohamta/donburi"

// Vec3 is a world position.
type Vec3 struct {
	X, Y, Z float64
}

// Rotation is an entity's facing.
type Rotation struct {
	Pitch, Yaw float64
}

// PlayerIdentifier marks the controlling player's entity.
const PlayerIdentifier = "minecraft:player"

// IdentityData names the entity type, e.g. "minecraft:blaze".
type IdentityData struct {
	Identifier string
}

// TransformData holds position and rotation.
type TransformData struct {
	Pos Vec3
	Rot Rotation
}

// HealthData holds current and max health.
type HealthData struct {
	Current int
	Max     int
}

// NameplateData is the always-visible floating name.
type NameplateData struct {
	Name       string
	AlwaysShow bool
}

// TurnOrderData tracks an entity's slot in the turn order UI.
type TurnOrderData struct {
	Order int
	Image string
}

// faintedData tags an entity whose death has already been reported.
type faintedData struct{}

var (
	Identity  = donburi.NewComponentType[IdentityData]()
	Transform = donburi.NewComponentType[TransformData]()
	Health    = donburi.NewComponentType[HealthData]()
	Nameplate = donburi.NewComponentType[NameplateData]()
	TurnOrder = donburi.NewComponentType[TurnOrderData]()
	fainted   = donburi.NewComponentType[faintedData]()
)
