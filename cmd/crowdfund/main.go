package main

import (
	"fmt"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("main")

const flagHome = "home"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if _, ok := err.(cli.ExitCoder); !ok {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
		}
		cli.HandleExitCoder(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "crowdfund",
		Usage: "crowdfunding ledger on a local record store",
		Description: `Runs the crowdfund program against a record store in the home directory.

The tool acts as the host of the program: the party named by the signer flag of
a command (--creator, --slip) is taken as having approved the call.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagHome,
				Usage:   "home directory, holds the config file and the record store",
				EnvVars: []string{"CROWDFUND_HOME"},
				Value:   defaultHome(),
			},
		},
		Commands: []*cli.Command{
			initCmd,
			fundCmd,
			createCmd,
			donateCmd,
			withdrawCmd,
			showCmd,
			eventsCmd,
		},
	}
}

func defaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".crowdfund"
	}
	return filepath.Join(dir, ".crowdfund")
}
