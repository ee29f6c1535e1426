package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the pebbles websocket server"`
	Play     PlayCmd          `cmd:"" help:"Play against a remote server"`
	Local    LocalCmd         `cmd:"" help:"Play against an in-process engine"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate many games between a policy and the engine"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pebbles"),
		kong.Description("A two-player subtraction game against the computer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
