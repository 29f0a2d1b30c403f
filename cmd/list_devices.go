package cmd

import (
	"bytes"
	"fmt"

	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/urfave/cli"
)

// List the available render devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	dev := device.New("host", device.WithWorkers(ctx.Int("workers")))
	if err := dev.Init(); err != nil {
		return err
	}
	defer dev.Close()

	var buf bytes.Buffer
	buf.WriteString("\nSystem provides 1 render device:\n\n")
	buf.WriteString(fmt.Sprintf("[Device 00]\n  Name    %s\n  Type    CPU\n  Workers %d\n", dev.Name, dev.Workers()))

	logger.Notice(buf.String())
	return nil
}
