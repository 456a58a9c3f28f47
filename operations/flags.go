package operations

import (
	"strings"

	"github.com/urfave/cli"
)

const (
	confFlagName    = "conf"
	envFileFlagName = "env"
	dataFlagName    = "data"
	levelFlagName   = "level"

	defaultSeedDataDir = "_data"
)

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func serviceConfigFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  joinFlagNames(confFlagName, "c", "config"),
			Usage: "path to the service configuration file",
		},
		cli.StringFlag{
			Name:  joinFlagNames(envFileFlagName, "e"),
			Usage: "path to a dotenv file loaded before the configuration",
		},
	)
}

func seedDataFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(dataFlagName, "d"),
		Usage: "directory holding bootcamps.json, courses.json, reviews.json and users.json",
		Value: defaultSeedDataDir,
	})
}
