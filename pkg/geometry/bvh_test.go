package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

// randomScene builds spheres and a random triangle mesh
func randomScene(random *rand.Rand, spheres, triangles int) *Primitives {
	prims := &Primitives{}
	for i := 0; i < spheres; i++ {
		center := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		prims.AddShape(NewSphere(center, 0.2+random.Float64(), i%5))
	}

	mesh := TriangleMesh{MaterialID: 7}
	for i := 0; i < triangles; i++ {
		base := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		for k := 0; k < 3; k++ {
			offset := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
			mesh.Positions = append(mesh.Positions, base.Add(offset))
		}
		mesh.Indices = append(mesh.Indices, [3]int{3 * i, 3*i + 1, 3*i + 2})
	}
	if triangles > 0 {
		prims.AddMesh(mesh)
	}
	return prims
}

func randomRay(random *rand.Rand) core.Ray {
	origin := core.NewVec3(random.Float64()*30-15, random.Float64()*30-15, random.Float64()*30-15)
	target := core.NewVec3(random.Float64()*10-5, random.Float64()*10-5, random.Float64()*10-5)
	return core.NewRay(origin, target.Subtract(origin).Normalize())
}

func TestBVH_MatchesBruteForce(t *testing.T) {
	tests := []struct {
		name      string
		spheres   int
		triangles int
	}{
		{"spheres only", 50, 0},
		{"triangles only", 0, 200},
		{"mixed", 40, 150},
		{"two shapes", 1, 1},
		{"odd count", 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			random := rand.New(rand.NewSource(42))
			prims := randomScene(random, tt.spheres, tt.triangles)
			bvh, err := BuildBVH(prims)
			if err != nil {
				t.Fatalf("BuildBVH failed: %v", err)
			}

			hits := 0
			for i := 0; i < 2000; i++ {
				ray := randomRay(random)
				expected, expectedOK := prims.IntersectBruteForce(ray)
				got, gotOK := bvh.Intersect(ray, prims)
				if expectedOK != gotOK {
					t.Fatalf("ray %d: brute force hit=%v, bvh hit=%v", i, expectedOK, gotOK)
				}
				if !gotOK {
					continue
				}
				hits++
				if math.Abs(expected.T-got.T) > 1e-9 {
					t.Errorf("ray %d: brute force t=%f, bvh t=%f", i, expected.T, got.T)
				}
				if expected.MaterialID != got.MaterialID {
					t.Errorf("ray %d: brute force material=%d, bvh material=%d", i, expected.MaterialID, got.MaterialID)
				}
				if bvh.Occluded(ray, prims) != true {
					t.Errorf("ray %d: hit but not occluded", i)
				}
			}
			if hits == 0 && tt.spheres+tt.triangles > 20 {
				t.Error("test scene produced no hits")
			}
		})
	}
}

func TestBVH_NodeBoxesContainChildren(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	prims := randomScene(random, 30, 100)
	bvh, err := BuildBVH(prims)
	if err != nil {
		t.Fatalf("BuildBVH failed: %v", err)
	}

	seen := make(map[int]int)
	for i, node := range bvh.Nodes {
		if node.IsLeaf() {
			if node.Left != -1 || node.Right != -1 {
				t.Errorf("leaf %d has children", i)
			}
			seen[node.PrimitiveID]++
			if !node.Box.Contains(prims.Shapes[node.PrimitiveID].BoundingBox(prims.Meshes)) {
				t.Errorf("leaf %d does not bound its primitive", i)
			}
			continue
		}
		if node.PrimitiveID != -1 {
			t.Errorf("internal node %d has primitive %d", i, node.PrimitiveID)
		}
		if !node.Box.Contains(bvh.Nodes[node.Left].Box) || !node.Box.Contains(bvh.Nodes[node.Right].Box) {
			t.Errorf("node %d does not contain its children", i)
		}
	}

	if len(seen) != len(prims.Shapes) {
		t.Errorf("expected %d primitives in leaves, found %d", len(prims.Shapes), len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("primitive %d appears in %d leaves", id, count)
		}
	}
	if stats := bvh.Stats(); stats.Leaves != len(prims.Shapes) || stats.Nodes != 2*len(prims.Shapes)-1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBVH_EmptyAndSingleShape(t *testing.T) {
	empty, err := BuildBVH(&Primitives{})
	if err != nil {
		t.Fatalf("empty build failed: %v", err)
	}
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))
	if _, ok := empty.Intersect(ray, &Primitives{}); ok {
		t.Error("empty BVH should not report hits")
	}
	if empty.Occluded(ray, &Primitives{}) {
		t.Error("empty BVH should not occlude")
	}

	prims := &Primitives{}
	prims.AddShape(NewSphere(core.NewVec3(0, 0, 0), 1, 3))
	single, err := BuildBVH(prims)
	if err != nil {
		t.Fatalf("single build failed: %v", err)
	}
	hit, ok := single.Intersect(ray, prims)
	if !ok {
		t.Fatal("expected hit on single sphere")
	}
	if math.Abs(hit.T-4) > 1e-9 || hit.MaterialID != 3 || hit.ShapeID != 0 {
		t.Errorf("unexpected hit %+v", hit)
	}
}

func TestBVH_RayThroughBoxMissesPrimitive(t *testing.T) {
	prims := &Primitives{}
	prims.AddShape(NewSphere(core.NewVec3(0, 0, 0), 1, 0))
	bvh, err := BuildBVH(prims)
	if err != nil {
		t.Fatalf("BuildBVH failed: %v", err)
	}

	// passes through the corner region of the box, outside the sphere
	ray := core.NewRay(core.NewVec3(0.9, 0.9, -5), core.NewVec3(0, 0, 1))
	if !bvh.Bounds().Hit(ray, ray.TMin, ray.TMax) {
		t.Fatal("ray should pass through the bounding box")
	}
	if _, ok := bvh.Intersect(ray, prims); ok {
		t.Error("ray should miss the sphere")
	}
	if bvh.Occluded(ray, prims) {
		t.Error("ray should not be occluded")
	}
}

func TestBVH_OccludedRespectsTMax(t *testing.T) {
	prims := &Primitives{}
	prims.AddShape(NewSphere(core.NewVec3(0, 0, 10), 1, 0))
	prims.AddShape(NewSphere(core.NewVec3(5, 0, 0), 1, 0))
	bvh, err := BuildBVH(prims)
	if err != nil {
		t.Fatalf("BuildBVH failed: %v", err)
	}

	shadow := core.SpawnRayTo(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 5))
	if bvh.Occluded(shadow, prims) {
		t.Error("blocker beyond TMax should not occlude")
	}
	shadow = core.SpawnRayTo(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 20))
	if !bvh.Occluded(shadow, prims) {
		t.Error("blocker within TMax should occlude")
	}
}

func TestBVH_IdenticalBoundingBoxes(t *testing.T) {
	prims := &Primitives{}
	for i := 0; i < 20; i++ {
		prims.AddShape(NewSphere(core.NewVec3(0, 0, 0), 1, i))
	}
	bvh, err := BuildBVH(prims)
	if err != nil {
		t.Fatalf("BuildBVH failed: %v", err)
	}
	if _, ok := bvh.Intersect(core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)), prims); !ok {
		t.Error("expected a hit among coincident spheres")
	}
}

func TestBVH_DepthBound(t *testing.T) {
	b := &BVH{}
	boxes := []bboxWithID{{box: core.NewAABB(core.Vec3{}, core.NewVec3(1, 1, 1)), id: 0}}
	if _, err := b.build(boxes, MaxBVHDepth+1); !errors.Is(err, ErrBVHTooDeep) {
		t.Errorf("expected ErrBVHTooDeep, got %v", err)
	}
}
