package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/urfave/cli"
)

// Display host cpu and memory information.
func ShowSystemInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	cpus, err := cpu.Info()
	if err != nil {
		return fmt.Errorf("reading cpu info: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("reading memory info: %w", err)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"CPU", "Cores", "MHz"})
	for _, c := range cpus {
		table.Append([]string{c.ModelName, fmt.Sprintf("%d", c.Cores), fmt.Sprintf("%.0f", c.Mhz)})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d logical cpus", runtime.NumCPU()),
		"RAM",
		fmt.Sprintf("%d MiB", vm.Total/(1024*1024)),
	})
	table.Render()

	logger.Noticef("system information\n%s", buf.String())
	return nil
}

// logHostInfo logs the cpu model once per render
func logHostInfo() {
	cpus, err := cpu.Info()
	if err != nil || len(cpus) == 0 {
		logger.Debugf("cpu info unavailable: %v", err)
		return
	}
	logger.Infof("host: %s, %d logical cpus", cpus[0].ModelName, runtime.NumCPU())
}
