package model

// Vec3 is a world position in yards.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceSquared avoids the square root; every range check in the rule
// tables compares against squared radii.
func (v Vec3) DistanceSquared(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// CountWithin returns how many positions lie within the squared radius of v.
func (v Vec3) CountWithin(points []Vec3, radiusSq float64) int {
	n := 0
	for _, p := range points {
		if v.DistanceSquared(p) <= radiusSq {
			n++
		}
	}
	return n
}
