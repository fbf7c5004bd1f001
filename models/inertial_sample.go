package models

// Vec3f is a three-axis float32 measurement.
type Vec3f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// InertialSample holds one 6-axis reading. Source logs store gyro before
// accel; the loader remaps to this canonical accel-then-gyro layout.
type InertialSample struct {
	Timestamp float64 `json:"timestamp"` // seconds
	Accel     Vec3f   `json:"accel"`     // m/s²
	Gyro      Vec3f   `json:"gyro"`      // rad/s
}

func (InertialSample) CSVHeader() []string {
	return []string{
		"timestamp_s",
		"accel_x", "accel_y", "accel_z",
		"gyro_x", "gyro_y", "gyro_z",
	}
}

func (s *InertialSample) CSVRow() []string {
	return []string{
		ftoa(s.Timestamp, 9),
		ftoa32(s.Accel.X, 6), ftoa32(s.Accel.Y, 6), ftoa32(s.Accel.Z, 6),
		ftoa32(s.Gyro.X, 6), ftoa32(s.Gyro.Y, 6), ftoa32(s.Gyro.Z, 6),
	}
}
