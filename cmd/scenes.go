package cmd

import (
	"bytes"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)
	logger.Noticef("built-in scenes\n%s", sceneTable(scene.Infos()))
	return nil
}

func sceneTable(infos []scene.SceneInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Needs --ply", "Description"})
	for _, info := range infos {
		table.Append([]string{
			info.ID,
			info.DisplayName,
			fmt.Sprintf("%t", info.NeedsMesh),
			info.Description,
		})
	}
	table.Render()
	return buf.String()
}
