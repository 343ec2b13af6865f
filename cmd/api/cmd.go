package api

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/lamaran/container"
	"github.com/yusufsyaifudin/lamaran/extd"
)

const (
	ExitSuccess = 0
	ExitErr     = 1
)

type Cmd struct {
	flags      *flag.FlagSet
	appName    string
	appVersion string
	configFile string
}

func NewCmd(appName, appVersion string) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{
			flags:      &flag.FlagSet{},
			appName:    appName,
			appVersion: appVersion,
		}
		err := cmd.init()
		return cmd, err
	}
}

var _ cli.Command = (*Cmd)(nil)
var _ cli.CommandFactory = NewCmd("", "")

func (c *Cmd) init() error {
	c.flags = flag.NewFlagSet("api", flag.ContinueOnError)
	c.flags.StringVar(&c.configFile, "config", container.DefaultConfigFile,
		"Config file to load")
	c.flags.StringVar(&c.configFile, "c", container.DefaultConfigFile,
		"Alias for config file to load")
	return nil
}

func (c *Cmd) Help() string {
	return strings.TrimSpace(`
Usage: lamaran api [-c config.yml]

  Start the HTTP server accepting job application submissions.
  The config file is optional, environment variables and .env override it.
`)
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing config argument: %s", err)
		return ExitErr
	}

	// ** load config file
	cfg, err := container.LoadConfig(c.configFile)
	if err != nil {
		log.Printf("error load config: %s", err)
		return ExitErr
	}

	extd.AppVersion = c.appVersion
	err = extd.RunServer(context.Background(), cfg)
	if err != nil {
		log.Printf("error running server: %s", err)
		return ExitErr
	}

	return ExitSuccess
}

func (c *Cmd) Synopsis() string {
	return `Start the HTTP server`
}
