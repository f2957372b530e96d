package physics

import (
	"math"
	"testing"
)

func TestForces(t *testing.T) {
	// 20 m/s cruise with typical passenger-car parameters.
	fAero := AerodynamicForce(0.3, 2.2, 20)
	if math.Abs(fAero-161.7) > 0.01 {
		t.Errorf("AerodynamicForce = %v, want ~161.7", fAero)
	}

	fRoll := RollingResistanceForce(0.01, 1500)
	if math.Abs(fRoll-147.15) > 0.01 {
		t.Errorf("RollingResistanceForce = %v, want ~147.15", fRoll)
	}

	if got := GradeForce(1500, 0); got != 0 {
		t.Errorf("GradeForce on flat = %v, want 0", got)
	}
	fGrade := GradeForce(1500, 0.05)
	if math.Abs(fGrade-735.75) > 0.01 {
		t.Errorf("GradeForce = %v, want ~735.75", fGrade)
	}

	if got := KineticEnergy(1500, 20); got != 300000 {
		t.Errorf("KineticEnergy = %v, want 300000", got)
	}
}

func TestPowerSteadyCruise(t *testing.T) {
	p := DefaultVehicleParams()

	// Constant 20 m/s, no acceleration, flat road: total force
	// ~308.85 N, wheel power ~6177 W, /0.9 efficiency ~6863 W drawn.
	watts := p.Power(20, 0, 0)
	want := (161.7 + 147.15) * 20 / 0.9
	if math.Abs(watts-want) > 0.5 {
		t.Errorf("Power = %v, want ~%v", watts, want)
	}
}

func TestPowerRegenBranch(t *testing.T) {
	p := DefaultVehicleParams()

	// Hard braking: inertial force dominates, wheel power negative,
	// derated (multiplied) by efficiency rather than divided.
	watts := p.Power(20, -3, 0)
	if watts >= 0 {
		t.Fatalf("Power = %v, want negative under braking", watts)
	}

	wheel := (161.7 + 147.15 - 3*1500.0) * 20
	want := wheel * 0.9
	if math.Abs(watts-want) > 0.5 {
		t.Errorf("Power = %v, want ~%v", watts, want)
	}
}

func TestPowerZeroSpeed(t *testing.T) {
	p := DefaultVehicleParams()
	if got := p.Power(0, 0, 0); got != 0 {
		t.Errorf("Power at standstill = %v, want 0", got)
	}
}

func TestPowerGuardsDegenerateEfficiency(t *testing.T) {
	p := DefaultVehicleParams()
	p.DrivetrainEff = 0

	watts := p.Power(20, 0, 0)
	if math.IsInf(watts, 0) || math.IsNaN(watts) {
		t.Errorf("Power with zero efficiency = %v, want finite", watts)
	}
}
