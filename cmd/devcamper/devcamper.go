package main

import (
	"fmt"
	"os"

	"github.com/Md-IrfanS/DevCamper-API/operations"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/urfave/cli"
)

// BuildRevision is set at link time.
var BuildRevision = ""

func main() {
	// The cli package parses the arguments and dispatches to the
	// subcommands registered in buildApp. Each subcommand sets up its own
	// environment.
	app := buildApp()

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "unexpected error occurred:", r)
			os.Exit(1)
		}
	}()

	grip.EmergencyFatal(app.Run(os.Args))
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "devcamper"
	app.Usage = "bootcamp directory REST API"
	app.Version = BuildRevision

	app.Commands = []cli.Command{
		operations.Service(),
		operations.Seed(),
	}

	// These are global options. Use this to configure logging or
	// other options independent from specific sub commands.
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "level",
			Value: "info",
			Usage: "Specify lowest visible log level as string: 'emergency|alert|critical|error|warning|notice|info|debug|trace'",
		},
	}

	app.Before = func(c *cli.Context) error {
		return loggingSetup(app.Name, c.String("level"))
	}

	return app
}

func loggingSetup(name, l string) error {
	if err := grip.SetSender(send.MakeErrorLogger()); err != nil {
		return err
	}
	grip.SetName(name)

	sender := grip.GetSender()
	info := sender.Level()
	info.Threshold = level.FromString(l)

	return sender.SetLevel(info)
}
