package renderer

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"runtime"
	"time"

	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/scene"
)

var logger = log.New("renderer")

// ErrSceneNotPreprocessed is returned when Render is given a scene that has not passed Preprocess
var ErrSceneNotPreprocessed = errors.New("renderer: scene is not preprocessed")

// DefaultTileSize is the tile edge length in pixels
const DefaultTileSize = 16

// Config controls how a render is split and seeded. Zero values select defaults.
type Config struct {
	TileSize   int   // pixels per tile edge, DefaultTileSize when <= 0
	NumWorkers int   // runtime.NumCPU() when <= 0
	Seed       int64 // 0 draws a seed from the OS entropy source
	Integrator integrator.Config

	// OnTile is called after every finished tile, from the worker goroutine
	OnTile func(done, total int)
}

func (c Config) withDefaults() Config {
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = runtime.NumCPU()
	}
	if c.Seed == 0 {
		c.Seed = entropySeed()
	}
	return c
}

// Render traces the scene at the camera's resolution and returns the image,
// row 0 at the top. It runs to completion.
func Render(s *scene.Scene, cfg Config) (*Image, Stats, error) {
	if s == nil || !s.Preprocessed() {
		return nil, Stats{}, ErrSceneNotPreprocessed
	}
	cfg = cfg.withDefaults()
	start := time.Now()

	width, height := s.Camera.Config.Width, s.Camera.Config.Height
	spp := max(1, s.Options.SamplesPerPixel)
	img := NewImage(width, height)

	tiles := NewTileGrid(width, height, cfg.TileSize, cfg.Seed)
	progress := NewProgress(len(tiles), cfg.OnTile)
	in := integrator.NewPathTracingIntegrator(cfg.Integrator)

	logger.Infof("rendering %dx%d at %d spp: %d tiles on %d workers, strategy %s, seed %d",
		width, height, spp, len(tiles), cfg.NumWorkers, cfg.Integrator.Strategy, cfg.Seed)

	pool := NewWorkerPool(s, in, img, spp, len(tiles), cfg.NumWorkers, progress)
	pool.Start()
	for _, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile})
	}
	pool.Stop()

	stats := Stats{
		Width:           width,
		Height:          height,
		SamplesPerPixel: spp,
		Tiles:           len(tiles),
		Workers:         pool.NumWorkers(),
	}
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.Paths += result.Paths
	}
	stats.Elapsed = time.Since(start)

	logger.Infof("rendered %d paths in %v", stats.Paths, stats.Elapsed)
	return img, stats, nil
}

// entropySeed returns a non-zero seed from crypto/rand, falling back to the clock
func entropySeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		logger.Warningf("reading entropy for the render seed: %v", err)
		return time.Now().UnixNano() | 1
	}
	if seed := int64(binary.LittleEndian.Uint64(b[:])); seed != 0 {
		return seed
	}
	return 1
}
