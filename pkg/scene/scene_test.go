package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
)

func testCamera(t *testing.T) *geometry.Camera {
	t.Helper()
	camera, err := geometry.NewCamera(geometry.CameraConfig{
		LookFrom: core.NewVec3(0, 0, 5),
		LookAt:   core.Vec3{},
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40,
		Width:    8,
		Height:   8,
	})
	if err != nil {
		t.Fatal(err)
	}
	return camera
}

func grey() material.Material {
	return material.NewDiffuse(material.NewConstTexture(core.NewVec3(0.5, 0.5, 0.5)))
}

func TestPreprocess_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(s *Scene)
		want  error
	}{
		{
			name: "shape references missing material",
			build: func(s *Scene) {
				s.AddShape(geometry.NewSphere(core.Vec3{}, 1, 3))
			},
			want: ErrInvalidMaterial,
		},
		{
			name: "nil material",
			build: func(s *Scene) {
				s.AddMaterial(nil)
			},
			want: ErrInvalidMaterial,
		},
		{
			name: "zero radius sphere",
			build: func(s *Scene) {
				m := s.AddMaterial(grey())
				s.AddShape(geometry.NewSphere(core.Vec3{}, 0, m))
			},
			want: ErrInvalidShape,
		},
		{
			name: "mesh face out of range",
			build: func(s *Scene) {
				m := s.AddMaterial(grey())
				quad := geometry.NewQuad(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), m)
				quad.Indices[1][2] = 9
				s.AddMesh(quad)
			},
			want: ErrInvalidMesh,
		},
		{
			name: "area light points at missing shape",
			build: func(s *Scene) {
				s.AddLight(lights.NewAreaLight(5, core.NewVec3(1, 1, 1)))
			},
			want: ErrInvalidAreaLight,
		},
		{
			name: "area light without back reference",
			build: func(s *Scene) {
				m := s.AddMaterial(grey())
				id := s.AddShape(geometry.NewSphere(core.Vec3{}, 1, m))
				s.AddLight(lights.NewAreaLight(id, core.NewVec3(1, 1, 1)))
			},
			want: ErrInvalidAreaLight,
		},
		{
			name: "shape points at the wrong light",
			build: func(s *Scene) {
				m := s.AddMaterial(grey())
				a := s.AddShape(geometry.NewSphere(core.Vec3{}, 1, m))
				b := s.AddShape(geometry.NewSphere(core.NewVec3(3, 0, 0), 1, m))
				s.AddAreaLight(a, core.NewVec3(1, 1, 1))
				s.Primitives.Shapes[b].SetAreaLight(0)
			},
			want: ErrInvalidAreaLight,
		},
		{
			name: "image texture without image",
			build: func(s *Scene) {
				s.AddMaterial(material.NewDiffuse(material.NewImageTexture(7)))
			},
			want: ErrInvalidTexture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testCamera(t), Options{SamplesPerPixel: 1})
			tt.build(s)
			err := s.Preprocess()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Preprocess() = %v, want %v", err, tt.want)
			}
			if s.Preprocessed() {
				t.Error("scene marked preprocessed after a failure")
			}
		})
	}
}

func TestPreprocess_MissingCamera(t *testing.T) {
	s := New(nil, Options{})
	if err := s.Preprocess(); !errors.Is(err, ErrInvalidCamera) {
		t.Fatalf("Preprocess() = %v, want ErrInvalidCamera", err)
	}
}

func TestPreprocess_EmptySceneRendersBackground(t *testing.T) {
	s := New(testCamera(t), Options{SamplesPerPixel: 1})
	s.Background = core.NewVec3(0.1, 0.2, 0.3)
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))); ok {
		t.Error("empty scene reported a hit")
	}
	if got := s.BackgroundRadiance(core.NewVec3(0, 1, 0)); got != s.Background {
		t.Errorf("BackgroundRadiance = %v, want %v", got, s.Background)
	}
	if s.LightSampler.Sample(0.5) != -1 {
		t.Error("light sampler picked a light in a scene without lights")
	}
	if s.Envmap() != nil {
		t.Error("unexpected environment map")
	}
}

func TestPreprocess_QuadLightBackReferences(t *testing.T) {
	s := New(testCamera(t), Options{SamplesPerPixel: 1, LightSelection: LightSelectionPower})
	m := s.AddMaterial(grey())
	s.AddQuadLight(core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), core.NewVec3(3, 3, 3), m)
	s.AddPointLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1))
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}

	if len(s.Lights) != 3 {
		t.Fatalf("got %d lights, want 3", len(s.Lights))
	}
	for i := 0; i < 2; i++ {
		al := s.Lights[i].(*lights.AreaLight)
		if s.Primitives.Shapes[al.ShapeID].AreaLight() != i {
			t.Errorf("shape %d does not point back to light %d", al.ShapeID, i)
		}
	}
	if _, ok := s.LightSampler.(*lights.PowerLightSampler); !ok {
		t.Errorf("LightSampler = %T, want power sampler", s.LightSampler)
	}
	for i, p := range s.LightPowers {
		if !(p > 0) {
			t.Errorf("light %d power = %f", i, p)
		}
	}
}

func TestPreprocess_EnvmapBackground(t *testing.T) {
	s := New(testCamera(t), Options{SamplesPerPixel: 1})
	img := material.NewGradientImage(8, 4, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))
	if err := s.SetEnvmap("sky", img, core.Identity(), 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}
	if s.EnvmapID != 0 {
		t.Fatalf("EnvmapID = %d, want 0", s.EnvmapID)
	}
	up := core.NewVec3(0, 1, 0)
	if got, want := s.BackgroundRadiance(up), s.Envmap().Radiance(s.Textures, up); got != want {
		t.Errorf("BackgroundRadiance = %v, want %v", got, want)
	}
}

func TestPreprocess_ExtraEnvmapsAreNotSelected(t *testing.T) {
	for _, selection := range []LightSelection{LightSelectionUniform, LightSelectionPower} {
		t.Run(selection.String(), func(t *testing.T) {
			s := New(testCamera(t), Options{SamplesPerPixel: 1, LightSelection: selection})
			first := material.NewGradientImage(8, 4, core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1))
			second := material.NewGradientImage(8, 4, core.NewVec3(5, 5, 5), core.NewVec3(5, 5, 5))
			if err := s.SetEnvmap("first", first, core.Identity(), 1); err != nil {
				t.Fatal(err)
			}
			if err := s.SetEnvmap("second", second, core.Identity(), 1); err != nil {
				t.Fatal(err)
			}
			if err := s.Preprocess(); err != nil {
				t.Fatal(err)
			}

			if s.EnvmapID != 0 {
				t.Fatalf("EnvmapID = %d, want 0", s.EnvmapID)
			}
			if s.LightPowers[1] != 0 {
				t.Errorf("ignored envmap power = %f, want 0", s.LightPowers[1])
			}
			if pmf := s.LightSampler.PMF(1); pmf != 0 {
				t.Errorf("ignored envmap PMF = %f, want 0", pmf)
			}
			if pmf := s.LightSampler.PMF(0); pmf != 1 {
				t.Errorf("first envmap PMF = %f, want 1", pmf)
			}
			for _, u := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
				if i := s.LightSampler.Sample(u); i != 0 {
					t.Errorf("Sample(%f) = %d, want 0", u, i)
				}
			}
		})
	}
}

func TestBuiltinScenes_Preprocess(t *testing.T) {
	for _, name := range []string{"default", "cornell", "materials"} {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name, BuildOptions{Width: 32, Height: 24})
			if err != nil {
				t.Fatal(err)
			}
			if s.Camera.Config.Width != 32 || s.Camera.Config.Height != 24 {
				t.Errorf("resolution override ignored: %dx%d", s.Camera.Config.Width, s.Camera.Config.Height)
			}
			if err := s.Preprocess(); err != nil {
				t.Fatal(err)
			}
			if len(s.Primitives.Shapes) == 0 || len(s.Lights) == 0 {
				t.Errorf("scene has %d shapes and %d lights", len(s.Primitives.Shapes), len(s.Lights))
			}
		})
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	if _, err := Builtin("nope", BuildOptions{}); err == nil {
		t.Error("expected an error for an unknown scene")
	}
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	infos := Infos()
	if len(infos) != len(names) || infos[0].ID != names[0] {
		t.Errorf("Infos() = %v", infos)
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"cornell", "Cornell"},
		{"cornell-box", "Cornell Box"},
		{"mesh_scene", "Mesh Scene"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.input); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

const testPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
4 0 0
4 2 0
0 2 0
4 0 1 2 3
`

func TestMeshScene(t *testing.T) {
	if _, err := NewMeshScene(BuildOptions{}); !errors.Is(err, ErrNoMeshPath) {
		t.Fatalf("NewMeshScene without path = %v, want ErrNoMeshPath", err)
	}

	path := filepath.Join(t.TempDir(), "quad.ply")
	if err := os.WriteFile(path, []byte(testPLY), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewMeshScene(BuildOptions{PLYPath: path, Width: 16, Height: 16})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}

	// floor (2) + mesh (2) + light (2)
	if got := len(s.Primitives.Shapes); got != 6 {
		t.Errorf("got %d shapes, want 6", got)
	}
	mesh := s.Primitives.Meshes[1]
	bounds := mesh.Bounds()
	if size := bounds.Size(); size.X < meshExtent-1e-9 || size.X > meshExtent+1e-9 {
		t.Errorf("fitted mesh width = %f, want %f", size.X, meshExtent)
	}
	if bounds.Min.Y < -1e-9 || bounds.Min.Y > 1e-9 {
		t.Errorf("fitted mesh rests at y = %f, want 0", bounds.Min.Y)
	}
}
