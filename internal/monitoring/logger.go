package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Vehiclef logs a diagnostic message scoped to one vehicle. Per-vehicle
// faults are reported here and never propagate into the tick loop.
func Vehiclef(vehicleID string, format string, v ...interface{}) {
	args := make([]interface{}, 0, len(v)+1)
	args = append(args, vehicleID)
	args = append(args, v...)
	Logf("[vehicle %s] "+format, args...)
}
