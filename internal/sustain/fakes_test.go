package sustain

import "errors"

// fakeVehicle is a scriptable VehicleSource for tests.
type fakeVehicle struct {
	id      string
	kin     Kinematics
	kinErr  error
	mass    float64
	massErr error
}

func newFakeVehicle(id string) *fakeVehicle {
	return &fakeVehicle{id: id, mass: 1500}
}

func (f *fakeVehicle) ID() string { return f.id }

func (f *fakeVehicle) Kinematics() (Kinematics, error) {
	if f.kinErr != nil {
		return Kinematics{}, f.kinErr
	}
	return f.kin, nil
}

func (f *fakeVehicle) PhysicsMass() (float64, error) {
	if f.massErr != nil {
		return 0, f.massErr
	}
	return f.mass, nil
}

// cruising positions the fake at pos moving along +X at the given speed
// with the given longitudinal acceleration.
func (f *fakeVehicle) cruising(speed, accel float64, pos Vec3) {
	f.kin = Kinematics{
		Position:     pos,
		Velocity:     Vec3{X: speed},
		Acceleration: Vec3{X: accel},
	}
}

// controlledVehicle additionally reports a driver command.
type controlledVehicle struct {
	*fakeVehicle
	ctrl Control
	has  bool
}

func (c *controlledVehicle) Control() (Control, bool) { return c.ctrl, c.has }

// slopedVehicle additionally reports a road grade.
type slopedVehicle struct {
	*fakeVehicle
	grade float64
}

func (s *slopedVehicle) RoadGrade() float64 { return s.grade }

var errSensorRead = errors.New("sensor read failed")
