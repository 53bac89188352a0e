package entities

import (
	"flag"
	"fmt"

	cli "github.com/urfave/cli"
)

// glog registers its flags on the standard flag set, urfave/cli owns the command line so values are copied over
func setGlogFlags(values map[string]string) error {
	var err error

	flag.VisitAll(func(fl *flag.Flag) {
		val, ok := values[fl.Name]
		if !ok || err != nil {
			return
		}
		if e := fl.Value.Set(val); e != nil {
			err = fmt.Errorf("glog flag %s: %w", fl.Name, e)
		}
	})

	return err
}

// GlogShim configures glog from the CLI context, meant to be used as app.Before
func GlogShim(c *cli.Context) error {
	_ = flag.CommandLine.Parse([]string{})

	return setGlogFlags(map[string]string{
		"v":               fmt.Sprint(c.GlobalInt("verbosity")),
		"logtostderr":     fmt.Sprint(!c.GlobalBool("logtofiles")),
		"stderrthreshold": fmt.Sprint(c.GlobalInt("stderrthreshold")),
		"vmodule":         c.GlobalString("vmodule"),
		"log_dir":         c.GlobalString("log_dir"),
	})
}

// GlogFlags are the logging flags exposed by the CLI
var GlogFlags = []cli.Flag{
	cli.IntFlag{
		Name: "verbosity", Value: 0, Usage: "log level for V logs (2 shows poll progress)",
	},
	cli.BoolFlag{
		Name: "logtofiles", Usage: "log to files in log_dir instead of standard error", Hidden: true,
	},
	cli.IntFlag{
		Name: "stderrthreshold", Value: 2, Usage: "logs at or above this threshold go to stderr", Hidden: true,
	},
	cli.StringFlag{
		Name: "vmodule", Usage: "comma-separated list of pattern=N settings for file-filtered logging", Hidden: true,
	},
	cli.StringFlag{
		Name: "log_dir", Usage: "if non-empty, write log files in this directory", Hidden: true,
	},
}
