// Package sustain implements per-vehicle sustainability tracking and
// fleet-level aggregation. A Tracker turns the kinematic samples of one
// vehicle into energy, CO2, regen and eco-driving figures; an Evaluator
// routes simulation ticks to trackers and accumulates spatial emission
// density across a map grid.
package sustain

import "math"

// Vec3 is a 3D vector in map coordinates (meters, m/s, m/s^2).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean length of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product with o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Snapshot describes one simulation tick. DeltaSeconds must be positive
// for the tick to take effect; non-positive ticks are ignored.
type Snapshot struct {
	// ElapsedSeconds is the simulation time since the run started.
	ElapsedSeconds float64

	// DeltaSeconds is the simulation time since the previous tick.
	DeltaSeconds float64
}

// Kinematics is one vehicle's kinematic state at a tick, as reported by
// the external simulation.
type Kinematics struct {
	Position     Vec3
	Velocity     Vec3
	Acceleration Vec3
}

// Control is the driver command applied to a vehicle, when the
// simulation exposes one.
type Control struct {
	// Throttle is the throttle input in [0, 1].
	Throttle float64

	// Brake is the brake input in [0, 1].
	Brake float64
}

// VehicleSource is the read-only interface to one simulated vehicle.
// The tracker polls it once per tick; it never mutates the vehicle.
type VehicleSource interface {
	// ID returns the stable external vehicle identifier.
	ID() string

	// Kinematics returns the vehicle's current kinematic state. An
	// error here (a transient sensor fault, a despawned actor) is
	// isolated per vehicle by the Evaluator.
	Kinematics() (Kinematics, error)

	// PhysicsMass returns the vehicle's reported physical mass in kg.
	// Queried once at tracker construction; a failure falls back to
	// the 1500 kg default.
	PhysicsMass() (float64, error)
}

// ControlReader is an optional extension of VehicleSource for
// simulations that expose the current driver command. Without it, a
// stationary vehicle always counts as idling.
type ControlReader interface {
	Control() (Control, bool)
}

// GradeReader is an optional extension of VehicleSource for simulations
// that expose the road grade (rise/run) under the vehicle. Without it
// the road is treated as flat.
type GradeReader interface {
	RoadGrade() float64
}
