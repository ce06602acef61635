package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	ShapeBase
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere with no area light attached
func NewSphere(center core.Vec3, radius float64, materialID int) *Sphere {
	return &Sphere{
		ShapeBase: ShapeBase{MaterialID: materialID, AreaLightID: -1},
		Center:    center,
		Radius:    radius,
	}
}

func (s *Sphere) isShape() {}

// Intersect tests if a ray intersects with the sphere
func (s *Sphere) Intersect(ray core.Ray, _ []TriangleMesh) (Intersection, bool) {
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return Intersection{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first
	root := (-halfB - sqrtD) / a
	if root < ray.TMin || root > ray.TMax {
		root = (-halfB + sqrtD) / a
		if root < ray.TMin || root > ray.TMax {
			return Intersection{}, false
		}
	}

	point := ray.At(root)
	normal := point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	return Intersection{
		Position:        point,
		GeometricNormal: normal,
		ShadingNormal:   normal,
		UV:              sphereUV(normal),
		T:               root,
		MaterialID:      s.MaterialID,
		AreaLightID:     s.AreaLightID,
	}, true
}

// sphereUV maps a unit direction to texture coordinates, v=0 at the south pole
func sphereUV(p core.Vec3) core.Vec2 {
	theta := math.Acos(math.Max(-1, math.Min(1, -p.Y)))
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox(_ []TriangleMesh) core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
}

// Area returns the surface area
func (s *Sphere) Area(_ []TriangleMesh) float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// SampleOnShape samples the cone of directions subtended by the sphere when
// ref is outside it, and the whole surface uniformly otherwise.
func (s *Sphere) SampleOnShape(_ []TriangleMesh, ref core.Vec3, sample core.Vec2) PointAndNormal {
	toCenter := s.Center.Subtract(ref)
	distSq := toCenter.LengthSquared()
	if distSq <= s.Radius*s.Radius {
		n := core.SampleOnUnitSphere(sample)
		return PointAndNormal{Point: s.Center.Add(n.Multiply(s.Radius)), Normal: n}
	}

	dist := math.Sqrt(distSq)
	sinThetaMaxSq := s.Radius * s.Radius / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMaxSq))
	oneMinusCosMax := sinThetaMaxSq / (1 + cosThetaMax)

	cosTheta := 1 - sample.X*oneMinusCosMax
	sinThetaSq := math.Max(0, 1-cosTheta*cosTheta)
	phi := 2 * math.Pi * sample.Y

	// Distance along the sampled direction to the near side of the sphere
	ds := dist*cosTheta - math.Sqrt(math.Max(0, s.Radius*s.Radius-distSq*sinThetaSq))
	cosAlpha := (distSq + s.Radius*s.Radius - ds*ds) / (2 * dist * s.Radius)
	cosAlpha = math.Max(-1, math.Min(1, cosAlpha))
	sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))

	frame := core.NewFrame(toCenter.Multiply(1 / dist))
	local := core.NewVec3(sinAlpha*math.Cos(phi), sinAlpha*math.Sin(phi), cosAlpha)
	n := frame.ToWorld(local).Negate()
	return PointAndNormal{Point: s.Center.Add(n.Multiply(s.Radius)), Normal: n}
}

// PDF returns the solid-angle density of SampleOnShape
func (s *Sphere) PDF(_ []TriangleMesh, pn PointAndNormal, ref core.Vec3) float64 {
	toCenter := s.Center.Subtract(ref)
	distSq := toCenter.LengthSquared()
	if distSq <= s.Radius*s.Radius {
		return areaToSolidAngle(1/s.Area(nil), pn, ref)
	}
	if pn.Normal.Dot(ref.Subtract(pn.Point)) <= 0 {
		return 0
	}
	sinThetaMaxSq := s.Radius * s.Radius / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMaxSq))
	oneMinusCosMax := sinThetaMaxSq / (1 + cosThetaMax)
	return 1 / (2 * math.Pi * oneMinusCosMax)
}

// areaToSolidAngle converts an area density at pn to a solid-angle density at ref.
// Returns 0 when pn faces away from ref.
func areaToSolidAngle(pdfArea float64, pn PointAndNormal, ref core.Vec3) float64 {
	d := ref.Subtract(pn.Point)
	distSq := d.LengthSquared()
	if distSq == 0 {
		return 0
	}
	cos := pn.Normal.Dot(d) / math.Sqrt(distSq)
	if cos <= 0 {
		return 0
	}
	return pdfArea * distSq / cos
}
