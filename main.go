package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/lamaran/assets"
	"github.com/yusufsyaifudin/lamaran/cmd/api"
	"github.com/yusufsyaifudin/lamaran/cmd/gen/genapidoc"
	"github.com/yusufsyaifudin/lamaran/cmd/preview"
)

func main() {
	const appName, appVersion = assets.ServiceName, "1.0.0"

	apiCmd := api.NewCmd(appName, appVersion)

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":        apiCmd, // default command if no subcommand defined
		"api":     apiCmd,
		"preview": preview.NewCmd(),
		"apidoc": func() (cli.Command, error) {
			return genapidoc.NewApiDocCmd(genapidoc.ApiDocCfg{
				AppName:    appName,
				AppVersion: appVersion,
			})
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
