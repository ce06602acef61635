package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderOptions are the render command's settings. Zero or negative values keep the scene's own.
type RenderOptions struct {
	Scene           string
	Width           int
	Height          int
	SamplesPerPixel int
	MaxDepth        int // -1 keeps the scene's depth
	LightSelection  string
	Strategy        string
	Heuristic       string
	Seed            int64
	Workers         int
	TileSize        int
	PLYPath         string
	Exposure        float64
	Out             string
}

func renderOptionsFromContext(ctx *cli.Context) RenderOptions {
	opts := RenderOptions{
		Scene:           ctx.String("scene"),
		Width:           ctx.Int("width"),
		Height:          ctx.Int("height"),
		SamplesPerPixel: ctx.Int("spp"),
		MaxDepth:        ctx.Int("max-depth"),
		LightSelection:  ctx.String("lights"),
		Strategy:        ctx.String("strategy"),
		Heuristic:       ctx.String("heuristic"),
		Seed:            ctx.Int64("seed"),
		Workers:         ctx.Int("workers"),
		TileSize:        ctx.Int("tile-size"),
		PLYPath:         ctx.String("ply"),
		Exposure:        ctx.Float64("exposure"),
		Out:             ctx.String("out"),
	}
	if ctx.NArg() > 0 {
		opts.Scene = ctx.Args().First()
	}
	return opts
}

// Render a still frame of a built-in scene and write it as a PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)
	logHostInfo()
	opts := renderOptionsFromContext(ctx)

	sc, err := prepareScene(opts)
	if err != nil {
		return err
	}

	cfg, err := rendererConfig(opts)
	if err != nil {
		return err
	}
	cfg.OnTile = func(done, total int) {
		logger.Debugf("tile %d/%d", done, total)
	}

	img, stats, err := renderer.Render(sc, cfg)
	if err != nil {
		return err
	}
	displayFrameStats(opts, sc.BVH.Stats(), stats)

	out := opts.Out
	if out == "" {
		out = defaultOutputPath(opts.Scene, time.Now())
	}
	return writePNG(out, img, opts.Exposure)
}

// prepareScene builds the named scene, applies command line overrides and preprocesses it
func prepareScene(opts RenderOptions) (*scene.Scene, error) {
	sc, err := scene.Builtin(opts.Scene, scene.BuildOptions{
		Width:   opts.Width,
		Height:  opts.Height,
		PLYPath: opts.PLYPath,
	})
	if err != nil {
		return nil, err
	}

	if opts.SamplesPerPixel > 0 {
		sc.Options.SamplesPerPixel = opts.SamplesPerPixel
	}
	if opts.MaxDepth >= 0 {
		sc.Options.MaxDepth = opts.MaxDepth
	}
	if opts.LightSelection != "" {
		if sc.Options.LightSelection, err = scene.ParseLightSelection(opts.LightSelection); err != nil {
			return nil, err
		}
	}

	if err := sc.Preprocess(); err != nil {
		return nil, fmt.Errorf("preprocessing scene %q: %w", opts.Scene, err)
	}
	return sc, nil
}

func rendererConfig(opts RenderOptions) (renderer.Config, error) {
	strategy, err := integrator.ParseStrategy(opts.Strategy)
	if err != nil {
		return renderer.Config{}, err
	}
	heuristic, err := integrator.ParseHeuristic(opts.Heuristic)
	if err != nil {
		return renderer.Config{}, err
	}
	return renderer.Config{
		TileSize:   opts.TileSize,
		NumWorkers: opts.Workers,
		Seed:       opts.Seed,
		Integrator: integrator.Config{Strategy: strategy, Heuristic: heuristic},
	}, nil
}

// defaultOutputPath is output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneName string, now time.Time) string {
	return filepath.Join("output", sceneName, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func writePNG(path string, img *renderer.Image, exposure float64) error {
	if exposure <= 0 {
		exposure = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	start := time.Now()
	err = png.Encode(f, img.ToRGBA(exposure))
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %w", path, cerr)
	} else if err != nil {
		err = fmt.Errorf("encoding png: %w", err)
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", path, time.Since(start).Milliseconds())
	return nil
}

func displayFrameStats(opts RenderOptions, bvh geometry.BVHStats, stats renderer.Stats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Resolution", "SPP", "BVH nodes", "BVH depth", "Tiles", "Workers", "Paths", "Paths/s"})
	table.Append([]string{
		opts.Scene,
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.SamplesPerPixel),
		fmt.Sprintf("%d", bvh.Nodes),
		fmt.Sprintf("%d", bvh.Depth),
		fmt.Sprintf("%d", stats.Tiles),
		fmt.Sprintf("%d", stats.Workers),
		fmt.Sprintf("%d", stats.Paths),
		fmt.Sprintf("%.0f", stats.PathsPerSecond()),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "", "TOTAL", stats.Elapsed.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
