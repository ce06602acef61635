package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func singleTriangle(normals []core.Vec3, uvs []core.Vec2) ([]TriangleMesh, *Triangle) {
	mesh := TriangleMesh{
		Positions: []core.Vec3{
			core.NewVec3(0, 0, 0),
			core.NewVec3(1, 0, 0),
			core.NewVec3(0, 1, 0),
		},
		Indices:    [][3]int{{0, 1, 2}},
		Normals:    normals,
		UVs:        uvs,
		MaterialID: 4,
	}
	return []TriangleMesh{mesh}, NewTriangle(0, 0, 4)
}

func TestTriangle_Intersect(t *testing.T) {
	meshes, tri := singleTriangle(nil, nil)

	tests := []struct {
		name      string
		ray       core.Ray
		expectHit bool
		expectedT float64
	}{
		{"hit from front", core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, -1)), true, 1},
		{"hit from back", core.NewRay(core.NewVec3(0.2, 0.2, -2), core.NewVec3(0, 0, 1)), true, 2},
		{"miss outside edge", core.NewRay(core.NewVec3(0.8, 0.8, 1), core.NewVec3(0, 0, -1)), false, 0},
		{"parallel", core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(1, 0, 0)), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := tri.Intersect(tt.ray, meshes)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %v", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
			// geometric normal keeps the winding orientation regardless of ray side
			if hit.GeometricNormal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
				t.Errorf("Expected normal (0,0,1), got %v", hit.GeometricNormal)
			}
			if hit.MaterialID != 4 {
				t.Errorf("Expected material 4, got %d", hit.MaterialID)
			}
		})
	}
}

func TestTriangle_InterpolatesNormalsAndUVs(t *testing.T) {
	normals := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 0, 1).Normalize(),
		core.NewVec3(0, 1, 1).Normalize(),
	}
	uvs := []core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	meshes, tri := singleTriangle(normals, uvs)

	hit, ok := tri.Intersect(core.NewRay(core.NewVec3(0.25, 0.5, 1), core.NewVec3(0, 0, -1)), meshes)
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(hit.UV.X-0.25) > 1e-9 || math.Abs(hit.UV.Y-0.5) > 1e-9 {
		t.Errorf("Expected uv (0.25, 0.5), got %v", hit.UV)
	}
	if math.Abs(hit.ShadingNormal.Length()-1) > 1e-9 {
		t.Errorf("shading normal should be normalized, got %v", hit.ShadingNormal)
	}
	if hit.ShadingNormal.X <= 0 || hit.ShadingNormal.Y <= 0 {
		t.Errorf("shading normal should tilt toward +x and +y, got %v", hit.ShadingNormal)
	}
}

func TestTriangle_SamplingAndPDF(t *testing.T) {
	meshes, tri := singleTriangle(nil, nil)
	if math.Abs(tri.Area(meshes)-0.5) > 1e-12 {
		t.Fatalf("Expected area 0.5, got %f", tri.Area(meshes))
	}

	ref := core.NewVec3(0.25, 0.25, 2)
	random := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		pn := tri.SampleOnShape(meshes, ref, core.NewVec2(random.Float64(), random.Float64()))
		if pn.Point.Z != 0 || pn.Point.X < 0 || pn.Point.Y < 0 || pn.Point.X+pn.Point.Y > 1+1e-12 {
			t.Fatalf("sample %v outside triangle", pn.Point)
		}
	}

	pn := PointAndNormal{Point: core.NewVec3(0.25, 0.25, 0), Normal: core.NewVec3(0, 0, 1)}
	// area pdf 2, distance 2, cos 1
	if got := tri.PDF(meshes, pn, ref); math.Abs(got-8) > 1e-9 {
		t.Errorf("Expected solid-angle pdf 8, got %f", got)
	}

	below := core.NewVec3(0.25, 0.25, -2)
	if got := tri.PDF(meshes, pn, below); got != 0 {
		t.Errorf("back-facing reference should give zero pdf, got %f", got)
	}
}

func TestTriangleMesh_Validate(t *testing.T) {
	meshes, _ := singleTriangle(nil, nil)
	if err := meshes[0].Validate(); err != nil {
		t.Errorf("valid mesh reported error: %v", err)
	}
	meshes[0].Indices = append(meshes[0].Indices, [3]int{0, 1, 5})
	if err := meshes[0].Validate(); err == nil {
		t.Error("expected error for out-of-range vertex index")
	}
}

func TestNewQuad(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0), 0)
	prims := &Primitives{}
	prims.AddMesh(quad)
	if len(prims.Shapes) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(prims.Shapes))
	}
	total := 0.0
	for _, s := range prims.Shapes {
		total += s.Area(prims.Meshes)
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("Expected total area 1, got %f", total)
	}
	// u x v = z x x = +y
	hit, ok := prims.IntersectBruteForce(core.NewRay(core.NewVec3(0.5, 2, 0.5), core.NewVec3(0, -1, 0)))
	if !ok {
		t.Fatal("expected hit on quad")
	}
	if hit.GeometricNormal.Subtract(core.NewVec3(0, 1, 0)).Length() > 1e-9 {
		t.Errorf("Expected normal +y, got %v", hit.GeometricNormal)
	}
}
