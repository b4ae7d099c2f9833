// Package arena describes the fixed battlefield: its construction commands,
// the ground indicators under fighters, and the roster of fighters placed on it.
package arena

import (
	"github.com/cory-johannsen/turnarena/internal/game/effect"
	"github.com/cory-johannsen/turnarena/internal/game/entity"
)

// Ground indicator materials.
const (
	BlockNeutral = "soul_sand"
	BlockActive  = "yellow_glazed_terracotta"
	BlockTarget  = "red_glazed_terracotta"
)

// GroundY is the height of the platform surface. The world is assumed flat.
const GroundY = 3

// Platform is the soul sand floor the fighters stand on.
var Platform = effect.Fill{
	From:  entity.Vec3{X: -14, Y: GroundY, Z: -4},
	To:    entity.Vec3{X: 14, Y: GroundY, Z: 14},
	Block: BlockNeutral,
}

// ObserverPosition is where the player watches the fight from.
var ObserverPosition = effect.Teleport{
	Pos:   entity.Vec3{X: -5.87, Y: 8, Z: -4.0},
	Yaw:   -28,
	Pitch: 40,
}

// Build returns the commands that rebuild the arena: iron bar walls, a lava
// moat and the platform, in that order.
func Build() []effect.Effect {
	return []effect.Effect{
		fill(-35, 3, 35, 35, 8, 36, "iron_bars"),
		fill(-35, 3, -26, 35, 8, -25, "iron_bars"),
		fill(-35, 3, -25, -36, 8, 35, "iron_bars"),
		fill(35, 3, -25, 36, 8, 35, "iron_bars"),
		fill(-35, 3, -25, 35, 3, 35, "flowing_lava"),
		Platform,
	}
}

// Prepare returns the commands issued at the start of every game: world rules
// that keep the arena static, the observer perch, and an inventory wipe.
func Prepare() []effect.Effect {
	return []effect.Effect{
		effect.Command{Line: "/gamerule doMobLoot false"},
		effect.Command{Line: "/gamerule doMobSpawning false"},
		effect.Command{Line: "/gamerule doWeatherCycle false"},
		effect.Command{Line: "/gamerule doDaylightCycle false"},
		fill(-6, 0, -4, -6, 7, -4, "barrier"),
		ObserverPosition,
		effect.Command{Line: "/clear @p"},
	}
}

// Indicator returns a 3×3 fill of block at ground level centered on pos.
func Indicator(pos entity.Vec3, block string) effect.Fill {
	return effect.Fill{
		From:  entity.Vec3{X: pos.X - 1, Y: GroundY, Z: pos.Z - 1},
		To:    entity.Vec3{X: pos.X + 1, Y: GroundY, Z: pos.Z + 1},
		Block: block,
	}
}

func fill(x1, y1, z1, x2, y2, z2 float64, block string) effect.Fill {
	return effect.Fill{
		From:  entity.Vec3{X: x1, Y: y1, Z: z1},
		To:    entity.Vec3{X: x2, Y: y2, Z: z2},
		Block: block,
	}
}
