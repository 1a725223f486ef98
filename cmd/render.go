package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/andrej6/bokeh/renderer"
	scenePkg "github.com/andrej6/bokeh/scene"
	"github.com/andrej6/bokeh/scene/reader"
)

func init() {
	// GL and glfw require the main OS thread.
	runtime.LockOSThread()
}

// Load the scene argument and either open the interactive viewer or,
// when an output path is given, run one threaded full-resolution
// render to a PNG.
func Render(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW:        ctx.Int("width"),
		FrameH:        ctx.Int("height"),
		ShadowSamples: ctx.Int("shadow-samples"),
		LensSamples:   ctx.Int("antialias-samples"),
		RayDepth:      ctx.Int("ray-depth"),
		Workers:       ctx.Int("workers"),
	}

	if ctx.NArg() != 1 {
		return cli.NewExitError("bokeh: missing scene file argument", 2)
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	if out := ctx.String("out"); out != "" {
		return renderToFile(sc, opts, out)
	}

	r, err := renderer.NewInteractive(sc, opts)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	defer r.Close()

	return r.Render()
}

func renderToFile(sc *scenePkg.Scene, opts renderer.Options, out string) error {
	r, err := renderer.NewHeadless(sc, opts)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	defer r.Close()

	logger.Notice("rendering frame")
	start := time.Now()
	if err = r.Render(); err != nil {
		return err
	}
	logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1000000)

	f, err := os.Create(out)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	defer f.Close()

	if err = png.Encode(f, r.Image().ToRGBA()); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Sections", "Pixels", "Render time"})
	for _, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.ID),
			fmt.Sprintf("%d", stat.Sections),
			fmt.Sprintf("%d", stat.Pixels),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
