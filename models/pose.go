package models

import "math"

// Quaternion is a unit rotation in Hamilton convention (w + xi + yj + zk).
type Quaternion struct {
	W float64 `json:"qw"`
	X float64 `json:"qx"`
	Y float64 `json:"qy"`
	Z float64 `json:"qz"`
}

// IdentityQuaternion is the zero rotation.
func IdentityQuaternion() Quaternion { return Quaternion{W: 1} }

// Mul returns q*r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conj is the inverse of a unit quaternion.
func (q Quaternion) Conj() Quaternion { return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z} }

// Normalize rescales q to unit length; a zero quaternion becomes identity.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// ExpRotation maps a rotation vector (axis * angle, radians) to a
// quaternion.
func ExpRotation(rx, ry, rz float64) Quaternion {
	theta := math.Sqrt(rx*rx + ry*ry + rz*rz)
	if theta < 1e-12 {
		// first-order expansion keeps tiny increments well conditioned
		return Quaternion{W: 1, X: rx / 2, Y: ry / 2, Z: rz / 2}.Normalize()
	}
	s := math.Sin(theta/2) / theta
	return Quaternion{W: math.Cos(theta / 2), X: rx * s, Y: ry * s, Z: rz * s}
}

// AngleTo returns the rotation angle in radians between q and r.
func (q Quaternion) AngleTo(r Quaternion) float64 {
	d := q.Conj().Mul(r).Normalize()
	w := math.Min(1, math.Abs(d.W))
	return 2 * math.Acos(w)
}

// Vec3 is a translation in metres.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is a rigid-body transform (body in world) returned by the tracking
// engine for every processed frame.
type Pose struct {
	Rotation    Quaternion `json:"rotation"`
	Translation Vec3       `json:"translation"`
}

// IdentityPose is the pose at the world origin with no rotation.
func IdentityPose() Pose { return Pose{Rotation: IdentityQuaternion()} }

// TUMFields formats the pose as "tx ty tz qx qy qz qw", the column order
// shared by the EuRoC and TUM trajectory files.
func (p Pose) TUMFields() []string {
	return []string{
		ftoa(p.Translation.X, 9), ftoa(p.Translation.Y, 9), ftoa(p.Translation.Z, 9),
		ftoa(p.Rotation.X, 9), ftoa(p.Rotation.Y, 9), ftoa(p.Rotation.Z, 9), ftoa(p.Rotation.W, 9),
	}
}
