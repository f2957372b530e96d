package sustain

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/banshee-data/emissions.report/internal/emissions"
	"github.com/banshee-data/emissions.report/internal/fsutil"
	"github.com/banshee-data/emissions.report/internal/monitoring"
	"github.com/banshee-data/emissions.report/internal/physics"
	"github.com/banshee-data/emissions.report/internal/units"
)

// Tunables of the per-tick estimation. Thresholds are in SI units.
const (
	// minProjectionSpeedMPS is the speed below which the longitudinal
	// acceleration is defined as zero instead of projecting the
	// acceleration onto a near-zero velocity vector.
	minProjectionSpeedMPS = 0.1

	// harshAccelThresholdMPS2 counts a harsh-acceleration event.
	harshAccelThresholdMPS2 = 2.0

	// harshBrakeThresholdMPS2 counts a harsh-braking event.
	harshBrakeThresholdMPS2 = -2.5

	// idleSpeedThresholdMPS below which a vehicle may count as idling.
	idleSpeedThresholdMPS = 0.3

	// idleThrottleThreshold under which a throttle input still counts
	// as idling.
	idleThrottleThreshold = 0.1

	// regenCaptureFraction derates negative wheel power into recovered
	// energy. This is a deliberate recapture derating, not a
	// round-trip efficiency.
	regenCaptureFraction = 0.5

	// DefaultSampleHz is the default log sampling rate.
	DefaultSampleHz = 5.0
)

// Eco score penalty weights, normalized per km of distance.
const (
	jerkStdWeight    = 1.2
	harshAccelWeight = 0.08
	harshBrakeWeight = 0.12
	idleWeight       = 0.01

	// minScoreDistanceKm floors the normalization distance so a trip's
	// first meters do not blow the penalty up.
	minScoreDistanceKm = 0.1
)

// ParamOverrides carries optional explicit physical parameters for one
// vehicle. Nil fields keep the defaults (and, for mass, the vehicle's
// own reported physics mass).
type ParamOverrides struct {
	MassKg        *float64 `json:"mass,omitempty"`
	Cd            *float64 `json:"cd,omitempty"`
	FrontalAreaM2 *float64 `json:"area,omitempty"`
	Crr           *float64 `json:"crr,omitempty"`
	DrivetrainEff *float64 `json:"drivetrain_eff,omitempty"`
	IsEV          *bool    `json:"is_ev,omitempty"`
}

// TrackerConfig configures a single vehicle tracker.
type TrackerConfig struct {
	// OutputDir is where the per-vehicle CSV log is created.
	OutputDir string

	// SampleHz is the log sampling rate; rows are emitted at most this
	// often in simulation time, with the flush interval floored at
	// 1 Hz. Defaults to DefaultSampleHz.
	SampleHz float64

	// Model overrides the powertrain class: Electric or Combustion
	// force the class, Auto defers to the per-vehicle default.
	Model emissions.Powertrain

	// GridGramsPerKWh is the carbon intensity applied to electric
	// vehicles. Zero falls back to the package default.
	GridGramsPerKWh float64

	// Overrides are explicit physical parameters for this vehicle.
	Overrides *ParamOverrides

	// FS is the filesystem the log sink writes to. Defaults to the
	// real filesystem.
	FS fsutil.FileSystem
}

// Tracker owns one vehicle's cumulative sustainability state. All
// cumulative quantities are monotone non-decreasing; Update is a no-op
// for non-positive tick durations.
type Tracker struct {
	id      string
	vehicle VehicleSource
	params  physics.VehicleParams
	isEV    bool
	gridG   float64

	// cumulative state
	energyJ    float64
	regenJ     float64
	co2G       float64
	distanceM  float64
	harshAccel int
	harshBrake int
	idleTimeS  float64

	// transient per-update state
	lastAccel float64
	lastPos   Vec3
	jerk      Welford

	logIntervalS float64
	accumDt      float64
	sink         *csvSink
}

// NewTracker builds a tracker for the given vehicle and opens its log
// sink. Mass comes from (in order of precedence) the explicit override,
// the vehicle's reported physics mass, or the 1500 kg default when the
// query fails.
func NewTracker(vehicle VehicleSource, cfg TrackerConfig) (*Tracker, error) {
	fs := cfg.FS
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}

	params := physics.DefaultVehicleParams()
	if mass, err := vehicle.PhysicsMass(); err == nil {
		params.MassKg = mass
	} else {
		monitoring.Vehiclef(vehicle.ID(), "physics mass unavailable, using %.0f kg: %v", params.MassKg, err)
	}

	isEV := false
	if o := cfg.Overrides; o != nil {
		if o.MassKg != nil {
			params.MassKg = *o.MassKg
		}
		if o.Cd != nil {
			params.Cd = *o.Cd
		}
		if o.FrontalAreaM2 != nil {
			params.FrontalAreaM2 = *o.FrontalAreaM2
		}
		if o.Crr != nil {
			params.Crr = *o.Crr
		}
		if o.DrivetrainEff != nil {
			params.DrivetrainEff = *o.DrivetrainEff
		}
		if o.IsEV != nil {
			isEV = *o.IsEV
		}
	}

	// A powertrain class override beats the per-vehicle default.
	switch cfg.Model {
	case emissions.Electric:
		isEV = true
	case emissions.Combustion:
		isEV = false
	}

	sampleHz := cfg.SampleHz
	if sampleHz <= 0 {
		sampleHz = DefaultSampleHz
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "cache/sustainability_logs"
	}
	if err := fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", outputDir, err)
	}

	sink, err := newCSVSink(fs, filepath.Join(outputDir, fmt.Sprintf("vehicle_%s_sustain.csv", vehicle.ID())))
	if err != nil {
		return nil, err
	}

	return &Tracker{
		id:      vehicle.ID(),
		vehicle: vehicle,
		params:  params,
		isEV:    isEV,
		gridG:   cfg.GridGramsPerKWh,
		// The flush interval is floored at 1 Hz: a sub-1-Hz rate still
		// logs a row at least once per simulated second.
		logIntervalS: 1.0 / math.Max(1, sampleHz),
		sink:         sink,
	}, nil
}

// ID returns the vehicle identifier this tracker belongs to.
func (t *Tracker) ID() string { return t.id }

// LogPath returns the path of the tracker's per-tick CSV log.
func (t *Tracker) LogPath() string { return t.sink.path }

// Params returns the resolved physical parameters. Fixed at
// construction.
func (t *Tracker) Params() physics.VehicleParams { return t.params }

// IsEV reports whether the electric emission model applies.
func (t *Tracker) IsEV() bool { return t.isEV }

// CO2Grams returns the total CO2 mass accumulated so far.
func (t *Tracker) CO2Grams() float64 { return t.co2G }

// LastPosition returns the vehicle position observed by the most recent
// successful Update.
func (t *Tracker) LastPosition() Vec3 { return t.lastPos }

// Update folds one simulation tick into the tracker. Ticks with a
// non-positive duration are ignored. A kinematics read failure or a log
// write failure is returned to the caller; the Evaluator isolates it
// per vehicle.
func (t *Tracker) Update(snap Snapshot) error {
	dt := snap.DeltaSeconds
	if dt <= 0 {
		return nil
	}

	kin, err := t.vehicle.Kinematics()
	if err != nil {
		return fmt.Errorf("read kinematics: %w", err)
	}
	t.lastPos = kin.Position

	speed := kin.Velocity.Norm()

	// Signed longitudinal acceleration: projection of the acceleration
	// onto the velocity direction. Undefined near standstill, where
	// the projection would amplify sensor noise.
	accel := 0.0
	if speed > minProjectionSpeedMPS {
		accel = kin.Velocity.Dot(kin.Acceleration) / speed
	}

	t.distanceM += speed * dt

	slope := 0.0
	if gr, ok := t.vehicle.(GradeReader); ok {
		slope = gr.RoadGrade()
	}

	powerW := t.params.Power(speed, accel, slope)
	if powerW > 0 {
		t.energyJ += powerW * dt
		if t.isEV {
			t.co2G += emissions.GridCO2(powerW, dt, t.gridG)
		} else {
			t.co2G += emissions.FuelCO2(powerW, dt)
		}
	} else {
		t.regenJ += math.Abs(powerW) * dt * regenCaptureFraction
	}

	jerk := (accel - t.lastAccel) / dt
	t.jerk.Add(jerk)
	t.lastAccel = accel

	if accel > harshAccelThresholdMPS2 {
		t.harshAccel++
	}
	if accel < harshBrakeThresholdMPS2 {
		t.harshBrake++
	}

	throttle, hasControl := 0.0, false
	if cr, ok := t.vehicle.(ControlReader); ok {
		if c, present := cr.Control(); present {
			throttle = c.Throttle
			hasControl = true
		}
	}
	if speed < idleSpeedThresholdMPS && (!hasControl || throttle < idleThrottleThreshold) {
		t.idleTimeS += dt
	}

	t.accumDt += dt
	if t.accumDt >= t.logIntervalS {
		row := logRow{
			Timestamp: snap.ElapsedSeconds,
			X:         kin.Position.X,
			Y:         kin.Position.Y,
			SpeedMPS:  speed,
			LongAccel: accel,
			Jerk:      jerk,
			PowerW:    powerW,
			DtS:       t.accumDt,
			EnergyJ:   t.energyJ,
			CO2Grams:  t.co2G,
			RegenJ:    t.regenJ,
			EcoScore:  t.EcoScore(),
		}
		t.accumDt = 0
		if err := t.sink.writeRow(row); err != nil {
			return err
		}
	}

	return nil
}

// EcoScore computes the current 0-100 eco-driving score: jerk variance,
// harsh events and idle time penalized per km driven. Recomputed on
// demand, never cached.
func (t *Tracker) EcoScore() float64 {
	distKm := math.Max(t.distanceM/1000.0, minScoreDistanceKm)

	penalty := (t.jerk.StdDev()*jerkStdWeight +
		float64(t.harshAccel)*harshAccelWeight +
		float64(t.harshBrake)*harshBrakeWeight +
		t.idleTimeS*idleWeight) / distKm

	return math.Max(0, 100-penalty)
}

// Results is the final per-vehicle snapshot emitted into the fleet
// summary. Field names match the summary JSON consumed downstream.
type Results struct {
	VehicleID  string  `json:"vehicle_id"`
	EnergyWh   float64 `json:"energy_Wh"`
	RegenWh    float64 `json:"regen_Wh"`
	CO2Grams   float64 `json:"co2_g"`
	DistanceM  float64 `json:"distance_m"`
	HarshAccel int     `json:"harsh_accel"`
	HarshBrake int     `json:"harsh_brake"`
	IdleTimeS  float64 `json:"idle_time_s"`
	EcoScore   float64 `json:"eco_score"`
}

// Results returns the current cumulative snapshot. Pure read.
func (t *Tracker) Results() Results {
	return Results{
		VehicleID:  t.id,
		EnergyWh:   units.JoulesToWattHours(t.energyJ),
		RegenWh:    units.JoulesToWattHours(t.regenJ),
		CO2Grams:   t.co2G,
		DistanceM:  t.distanceM,
		HarshAccel: t.harshAccel,
		HarshBrake: t.harshBrake,
		IdleTimeS:  t.idleTimeS,
		EcoScore:   t.EcoScore(),
	}
}

// Close releases the log sink. Errors are logged and swallowed so one
// vehicle's sink can never abort another's shutdown.
func (t *Tracker) Close() {
	if err := t.sink.close(); err != nil {
		monitoring.Vehiclef(t.id, "close log sink: %v", err)
	}
}
