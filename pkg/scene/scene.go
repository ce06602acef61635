package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/material"
)

var logger = log.New("scene")

// Validation errors returned by Preprocess
var (
	ErrInvalidMaterial  = errors.New("scene: invalid material reference")
	ErrInvalidAreaLight = errors.New("scene: invalid area light reference")
	ErrInvalidShape     = errors.New("scene: invalid shape")
	ErrInvalidMesh      = errors.New("scene: invalid mesh reference")
	ErrInvalidTexture   = errors.New("scene: invalid texture reference")
	ErrInvalidCamera    = errors.New("scene: missing camera")
)

// LightSelection chooses how next-event estimation picks a light
type LightSelection int

const (
	// LightSelectionUniform picks every light with equal probability
	LightSelectionUniform LightSelection = iota
	// LightSelectionPower picks lights in proportion to their emitted power
	LightSelectionPower
)

func (l LightSelection) String() string {
	switch l {
	case LightSelectionPower:
		return "power"
	default:
		return "uniform"
	}
}

// ParseLightSelection maps "uniform" or "power" to a LightSelection
func ParseLightSelection(s string) (LightSelection, error) {
	switch s {
	case "", "uniform":
		return LightSelectionUniform, nil
	case "power":
		return LightSelectionPower, nil
	}
	return LightSelectionUniform, fmt.Errorf("unknown light selection %q", s)
}

// Options are the per-scene render settings
type Options struct {
	SamplesPerPixel int
	MaxDepth        int // 0 or less renders direct lighting only
	LightSelection  LightSelection
}

// Scene owns every arena the renderer reads: shapes and meshes, materials,
// lights and images. Cross references are indices into these arenas.
type Scene struct {
	Camera     *geometry.Camera
	Primitives geometry.Primitives
	Materials  []material.Material
	Lights     []lights.Light
	Textures   *material.TexturePool
	Background core.Vec3
	Options    Options

	// Derived by Preprocess
	BVH          *geometry.BVH
	LightSampler lights.LightSampler
	LightPowers  []float64
	EnvmapID     int // index into Lights, -1 without an environment map
	Bounds       core.AABB

	preprocessed bool
}

// New creates an empty scene with the given camera
func New(camera *geometry.Camera, options Options) *Scene {
	return &Scene{
		Camera:   camera,
		Textures: material.NewTexturePool(),
		Options:  options,
		EnvmapID: -1,
	}
}

// AddMaterial appends a material and returns its index
func (s *Scene) AddMaterial(m material.Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddShape appends a shape and returns its index
func (s *Scene) AddShape(shape geometry.Shape) int {
	return s.Primitives.AddShape(shape)
}

// AddMesh stores a mesh and its triangles, returning the first triangle index and the triangle count
func (s *Scene) AddMesh(mesh geometry.TriangleMesh) (int, int) {
	_, first := s.Primitives.AddMesh(mesh)
	return first, len(mesh.Indices)
}

// AddLight appends a light and returns its index
func (s *Scene) AddLight(l lights.Light) int {
	s.Lights = append(s.Lights, l)
	return len(s.Lights) - 1
}

// AddAreaLight makes an existing shape emit and links the two by index
func (s *Scene) AddAreaLight(shapeID int, intensity core.Vec3) int {
	id := s.AddLight(lights.NewAreaLight(shapeID, intensity))
	s.Primitives.Shapes[shapeID].SetAreaLight(id)
	return id
}

// AddSphereLight adds an emitting sphere
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, intensity core.Vec3, materialID int) int {
	shapeID := s.AddShape(geometry.NewSphere(center, radius, materialID))
	return s.AddAreaLight(shapeID, intensity)
}

// AddQuadLight adds an emitting parallelogram facing u x v, one area light per triangle
func (s *Scene) AddQuadLight(corner, u, v core.Vec3, intensity core.Vec3, materialID int) {
	first, count := s.AddMesh(geometry.NewQuad(corner, u, v, materialID))
	for i := first; i < first+count; i++ {
		s.AddAreaLight(i, intensity)
	}
}

// AddPointLight adds a point light
func (s *Scene) AddPointLight(position, intensity core.Vec3) int {
	return s.AddLight(lights.NewPointLight(position, intensity))
}

// SetEnvmap stores img in the texture pool and adds an environment light for it
func (s *Scene) SetEnvmap(name string, img *material.Image3, toWorld core.Matrix4x4, scale float64) error {
	if s.Textures == nil {
		s.Textures = material.NewTexturePool()
	}
	env, err := lights.NewEnvmap(s.Textures, s.Textures.AddImage(name, img), toWorld, scale)
	if err != nil {
		return err
	}
	s.AddLight(env)
	return nil
}

// Preprocessed reports whether Preprocess has completed successfully
func (s *Scene) Preprocessed() bool {
	return s.preprocessed
}

// Preprocess validates every cross reference and builds the derived state:
// the BVH, scene bounds, light powers, light sampler and environment light index.
func (s *Scene) Preprocess() error {
	s.preprocessed = false
	if s.Camera == nil {
		return ErrInvalidCamera
	}
	if s.Textures == nil {
		s.Textures = material.NewTexturePool()
	}

	if err := s.validateMaterials(); err != nil {
		return err
	}
	if err := s.validateShapes(); err != nil {
		return err
	}
	if err := s.validateLights(); err != nil {
		return err
	}

	bvh, err := geometry.BuildBVH(&s.Primitives)
	if err != nil {
		return fmt.Errorf("building bvh: %w", err)
	}
	s.BVH = bvh
	s.Bounds = bvh.Bounds()

	sceneRadius := 0.0
	if s.Bounds.IsValid() {
		_, sceneRadius = s.Bounds.BoundingSphere()
	}

	// Only the first environment map is seen by escaping rays, so later
	// ones get zero power and are never selected for light sampling
	s.EnvmapID = -1
	s.LightPowers = make([]float64, len(s.Lights))
	selectable := make([]float64, len(s.Lights))
	ignored := 0
	for i, l := range s.Lights {
		if _, ok := l.(*lights.Envmap); ok {
			if s.EnvmapID >= 0 {
				logger.Warningf("scene has more than one environment map, ignoring light %d and using light %d", i, s.EnvmapID)
				ignored++
				continue
			}
			s.EnvmapID = i
		}
		s.LightPowers[i] = l.Power(&s.Primitives, s.Textures, sceneRadius)
		selectable[i] = 1
	}
	s.LightSampler = newLightSampler(s.Options.LightSelection, s.LightPowers, selectable, ignored)

	stats := bvh.Stats()
	logger.Infof("preprocessed scene: %d shapes, %d meshes, %d materials, %d lights, bvh %d nodes depth %d",
		len(s.Primitives.Shapes), len(s.Primitives.Meshes), len(s.Materials), len(s.Lights), stats.Nodes, stats.Depth)

	s.preprocessed = true
	return nil
}

// newLightSampler picks among the selectable lights. A light with a zero
// selectable weight always has PMF 0.
func newLightSampler(selection LightSelection, powers, selectable []float64, ignored int) lights.LightSampler {
	if selection == LightSelectionPower {
		total := 0.0
		for _, p := range powers {
			total += max(p, 0)
		}
		if total > 0 || ignored == 0 {
			return lights.NewPowerLightSampler(powers)
		}
		return lights.NewPowerLightSampler(selectable)
	}
	if ignored == 0 {
		return lights.NewUniformLightSampler(len(powers))
	}
	return lights.NewPowerLightSampler(selectable)
}

func (s *Scene) validateMaterials() error {
	for i, m := range s.Materials {
		if m == nil {
			return fmt.Errorf("material %d is nil: %w", i, ErrInvalidMaterial)
		}
		for _, tex := range materialTextures(m) {
			if tex == nil {
				return fmt.Errorf("material %d has no texture: %w", i, ErrInvalidTexture)
			}
			if err := s.Textures.ValidateTexture(tex); err != nil {
				return fmt.Errorf("material %d: %v: %w", i, err, ErrInvalidTexture)
			}
		}
	}
	return nil
}

func (s *Scene) validateShapes() error {
	for i := range s.Primitives.Meshes {
		if err := s.Primitives.Meshes[i].Validate(); err != nil {
			return fmt.Errorf("mesh %d: %v: %w", i, err, ErrInvalidMesh)
		}
	}

	for i, shape := range s.Primitives.Shapes {
		switch sh := shape.(type) {
		case *geometry.Sphere:
			if !(sh.Radius > 0) {
				return fmt.Errorf("shape %d: sphere radius %v: %w", i, sh.Radius, ErrInvalidShape)
			}
		case *geometry.Triangle:
			if sh.MeshID < 0 || sh.MeshID >= len(s.Primitives.Meshes) {
				return fmt.Errorf("shape %d: mesh %d: %w", i, sh.MeshID, ErrInvalidMesh)
			}
			if sh.FaceID < 0 || sh.FaceID >= len(s.Primitives.Meshes[sh.MeshID].Indices) {
				return fmt.Errorf("shape %d: face %d of mesh %d: %w", i, sh.FaceID, sh.MeshID, ErrInvalidMesh)
			}
		default:
			return fmt.Errorf("shape %d: %w", i, ErrInvalidShape)
		}

		if m := shape.Material(); m < 0 || m >= len(s.Materials) {
			return fmt.Errorf("shape %d: material %d of %d: %w", i, m, len(s.Materials), ErrInvalidMaterial)
		}
		if l := shape.AreaLight(); l >= 0 {
			if l >= len(s.Lights) {
				return fmt.Errorf("shape %d: light %d of %d: %w", i, l, len(s.Lights), ErrInvalidAreaLight)
			}
			al, ok := s.Lights[l].(*lights.AreaLight)
			if !ok || al.ShapeID != i {
				return fmt.Errorf("shape %d: light %d does not point back to it: %w", i, l, ErrInvalidAreaLight)
			}
		}
	}
	return nil
}

func (s *Scene) validateLights() error {
	for i, l := range s.Lights {
		switch light := l.(type) {
		case *lights.AreaLight:
			if light.ShapeID < 0 || light.ShapeID >= len(s.Primitives.Shapes) {
				return fmt.Errorf("light %d: shape %d: %w", i, light.ShapeID, ErrInvalidAreaLight)
			}
			if s.Primitives.Shapes[light.ShapeID].AreaLight() != i {
				return fmt.Errorf("light %d: shape %d does not point back to it: %w", i, light.ShapeID, ErrInvalidAreaLight)
			}
		case *lights.Envmap:
			if img := s.Textures.Image(light.ImageID); img == nil {
				return fmt.Errorf("light %d: environment image %d: %w", i, light.ImageID, ErrInvalidTexture)
			}
		case *lights.PointLight:
		case nil:
			return fmt.Errorf("light %d is nil: %w", i, ErrInvalidAreaLight)
		}
	}
	return nil
}

// materialTextures lists the textures a material reads
func materialTextures(m material.Material) []material.Texture {
	switch mat := m.(type) {
	case *material.Diffuse:
		return []material.Texture{mat.Reflectance}
	case *material.Mirror:
		return []material.Texture{mat.Reflectance}
	case *material.Plastic:
		return []material.Texture{mat.Reflectance}
	case *material.Phong:
		return []material.Texture{mat.Reflectance}
	case *material.BlinnPhong:
		return []material.Texture{mat.Reflectance}
	case *material.BlinnPhongMicrofacet:
		return []material.Texture{mat.Reflectance}
	case *material.DisneyDiffuse:
		return []material.Texture{mat.BaseColor}
	case *material.DisneyMetal:
		return []material.Texture{mat.BaseColor}
	case *material.DisneyGlass:
		return []material.Texture{mat.BaseColor}
	case *material.DisneySheen:
		return []material.Texture{mat.BaseColor}
	case *material.DisneyBSDF:
		return []material.Texture{mat.BaseColor}
	}
	return nil
}

// Intersect returns the closest hit along ray
func (s *Scene) Intersect(ray core.Ray) (geometry.Intersection, bool) {
	return s.BVH.Intersect(ray, &s.Primitives)
}

// Occluded reports whether anything blocks ray within [TMin, TMax]
func (s *Scene) Occluded(ray core.Ray) bool {
	return s.BVH.Occluded(ray, &s.Primitives)
}

// Envmap returns the environment light, or nil
func (s *Scene) Envmap() *lights.Envmap {
	if s.EnvmapID < 0 {
		return nil
	}
	return s.Lights[s.EnvmapID].(*lights.Envmap)
}

// BackgroundRadiance is the radiance arriving along a ray that escapes in direction dir
func (s *Scene) BackgroundRadiance(dir core.Vec3) core.Vec3 {
	if env := s.Envmap(); env != nil {
		return env.Radiance(s.Textures, dir)
	}
	return s.Background
}
