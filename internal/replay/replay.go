// Package replay feeds recorded simulation ticks through the fleet
// evaluator. A capture is a JSONL file with one tick per line; each
// tick carries the kinematic state of every live vehicle, plus the
// driver command and road grade when the capture includes them.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/emissions.report/internal/sustain"
)

// VehicleState is one vehicle's entry within a tick record.
type VehicleState struct {
	ID     string  `json:"id"`
	MassKg float64 `json:"mass_kg,omitempty"`

	Position     sustain.Vec3 `json:"pos"`
	Velocity     sustain.Vec3 `json:"vel"`
	Acceleration sustain.Vec3 `json:"acc"`

	// Throttle and Brake are optional; captures from simulations
	// without a control channel omit both.
	Throttle *float64 `json:"throttle,omitempty"`
	Brake    *float64 `json:"brake,omitempty"`

	// Slope is the road grade (rise/run) under the vehicle, when the
	// capture includes terrain.
	Slope *float64 `json:"slope,omitempty"`
}

// TickRecord is one line of a capture file.
type TickRecord struct {
	ElapsedSeconds float64        `json:"t"`
	DeltaSeconds   float64        `json:"dt"`
	Vehicles       []VehicleState `json:"vehicles"`
}

// ReadTicks parses a JSONL capture. Blank lines are skipped; a
// malformed line aborts the read with its line number.
func ReadTicks(r io.Reader) ([]TickRecord, error) {
	var ticks []TickRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var tick TickRecord
		if err := json.Unmarshal(raw, &tick); err != nil {
			return nil, fmt.Errorf("capture line %d: %w", line, err)
		}
		ticks = append(ticks, tick)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return ticks, nil
}

// vehicle replays one recorded vehicle. It holds the latest state and
// is updated in place each tick, so the evaluator can keep polling the
// same source.
type vehicle struct {
	id    string
	state VehicleState
	live  bool
}

func (v *vehicle) ID() string { return v.id }

func (v *vehicle) Kinematics() (sustain.Kinematics, error) {
	if !v.live {
		return sustain.Kinematics{}, fmt.Errorf("vehicle %s absent from tick", v.id)
	}
	return sustain.Kinematics{
		Position:     v.state.Position,
		Velocity:     v.state.Velocity,
		Acceleration: v.state.Acceleration,
	}, nil
}

func (v *vehicle) PhysicsMass() (float64, error) {
	if v.state.MassKg <= 0 {
		return 0, fmt.Errorf("vehicle %s: no mass in capture", v.id)
	}
	return v.state.MassKg, nil
}

func (v *vehicle) Control() (sustain.Control, bool) {
	if v.state.Throttle == nil && v.state.Brake == nil {
		return sustain.Control{}, false
	}
	var ctl sustain.Control
	if v.state.Throttle != nil {
		ctl.Throttle = *v.state.Throttle
	}
	if v.state.Brake != nil {
		ctl.Brake = *v.state.Brake
	}
	return ctl, true
}

func (v *vehicle) RoadGrade() float64 {
	if v.state.Slope == nil {
		return 0
	}
	return *v.state.Slope
}

// OverrideFunc resolves the per-vehicle parameter overrides applied
// when a vehicle first appears in the capture.
type OverrideFunc func(id string) *sustain.ParamOverrides

// Runner drives an evaluator from a tick stream. Vehicles are
// registered the first time they appear; a vehicle missing from a tick
// reports a kinematics error for that tick and resumes when it
// reappears.
type Runner struct {
	eval      *sustain.Evaluator
	overrides OverrideFunc
	vehicles  map[string]*vehicle
}

func NewRunner(eval *sustain.Evaluator, overrides OverrideFunc) *Runner {
	if overrides == nil {
		overrides = func(string) *sustain.ParamOverrides { return nil }
	}
	return &Runner{
		eval:      eval,
		overrides: overrides,
		vehicles:  make(map[string]*vehicle),
	}
}

// Step applies one tick: refreshes vehicle states, registers
// newcomers and advances the evaluator.
func (r *Runner) Step(tick TickRecord) error {
	for _, v := range r.vehicles {
		v.live = false
	}
	for _, st := range tick.Vehicles {
		v, ok := r.vehicles[st.ID]
		if !ok {
			v = &vehicle{id: st.ID, state: st, live: true}
			if err := r.eval.RegisterVehicle(v, r.overrides(st.ID)); err != nil {
				return fmt.Errorf("register vehicle %s: %w", st.ID, err)
			}
			r.vehicles[st.ID] = v
			continue
		}
		v.state = st
		v.live = true
	}

	r.eval.Update(sustain.Snapshot{
		ElapsedSeconds: tick.ElapsedSeconds,
		DeltaSeconds:   tick.DeltaSeconds,
	})
	return nil
}

// Run replays every tick in order.
func (r *Runner) Run(ticks []TickRecord) error {
	for _, tick := range ticks {
		if err := r.Step(tick); err != nil {
			return err
		}
	}
	return nil
}

// VehicleCount reports how many distinct vehicles have appeared.
func (r *Runner) VehicleCount() int { return len(r.vehicles) }
