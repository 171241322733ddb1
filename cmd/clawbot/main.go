package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/clawbot/pkg/robot"
)

type Options struct {
	Config string `short:"c" long:"config" default:"clawbot.json" description:"Configuration file (.json or .yaml)"`

	Setup       SetupCommand       `command:"setup" description:"Scan for motors and write the configuration"`
	Teleoperate TeleoperateCommand `command:"teleoperate" alias:"teleop" description:"Start operator control"`
	Info        InfoCommand        `command:"info" description:"Show configuration and driver controls"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "clawbot - operator control for a skid-steer robot with arm and claw"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// configPath returns the configuration file selected on the command line.
func configPath() string {
	if opts.Config == "" {
		return robot.DefaultConfigFile
	}
	return opts.Config
}
