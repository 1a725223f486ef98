package cmd

import (
	"github.com/urfave/cli"

	"github.com/andrej6/bokeh/log"
)

var logger = log.New("bokeh")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
