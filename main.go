package main

import (
	"os"

	"github.com/df07/go-pathtracer/cmd"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/urfave/cli"
)

var logger = log.New("main")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-pathtracer"
	app.Usage = "render scenes with a Monte Carlo path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "render",
			Usage:     "render a built-in scene to a png file",
			ArgsUsage: "[scene]",
			Description: `
Render a single frame of a built-in scene with unidirectional path tracing.
Width, height, samples and depth default to the scene's own settings.

The frame is written to output/<scene>/render_<timestamp>.png unless --out is given.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "default",
					Usage: "built-in scene id (see the scenes command)",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "samples per pixel",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Value: -1,
					Usage: "indirect bounces; 0 renders direct lighting only",
				},
				cli.StringFlag{
					Name:  "strategy",
					Value: "mis",
					Usage: "light transport strategy: mis, bsdf or onesample",
				},
				cli.StringFlag{
					Name:  "heuristic",
					Value: "balance",
					Usage: "MIS weighting: balance or power",
				},
				cli.StringFlag{
					Name:  "lights",
					Usage: "light selection: uniform or power",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "random seed; 0 picks one at random",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "render goroutines; 0 uses every cpu",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: renderer.DefaultTileSize,
					Usage: "tile edge length in pixels",
				},
				cli.StringFlag{
					Name:  "ply",
					Usage: "ply mesh file for the mesh scene",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "camera exposure for tone-mapping",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list the built-in scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:   "info",
			Usage:  "show cpu and memory information",
			Action: cmd.ShowSystemInfo,
		},
	}
	return app
}
