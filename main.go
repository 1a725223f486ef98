package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/andrej6/bokeh/cmd"
)

func main() {
	// The height flag claims -h, so help only answers to --help.
	cli.HelpFlag = cli.BoolFlag{
		Name:  "help",
		Usage: "show help",
	}
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "bokeh"
	app.Usage = "interactive progressive ray tracer with lens-sampled depth of field"
	app.UsageText = "bokeh [options] <scene-file>"
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
		cli.IntFlag{
			Name:  "width, w",
			Usage: "rendered image width",
			Value: 200,
		},
		cli.IntFlag{
			Name:  "height, h",
			Usage: "rendered image height",
			Value: 200,
		},
		cli.IntFlag{
			Name:  "shadow-samples, s",
			Usage: "surface samples per area light",
			Value: 10,
		},
		cli.IntFlag{
			Name:  "antialias-samples, a",
			Usage: "jittered lens samples per pixel",
			Value: 1,
		},
		cli.IntFlag{
			Name:  "ray-depth, d",
			Usage: "maximum ray recursion depth",
			Value: 1,
		},
		cli.IntFlag{
			Name:  "workers, j",
			Usage: "parallel render workers (0 = cpu count)",
		},
		cli.StringFlag{
			Name:  "out, o",
			Usage: "render a full-resolution frame to a png instead of opening the viewer",
		},
	}
	app.Action = cmd.Render
	app.OnUsageError = func(ctx *cli.Context, err error, _ bool) error {
		return cli.NewExitError(fmt.Sprintf("bokeh: %s", err.Error()), 2)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
