package main

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/luca-patrignani/helix/config"
)

func newApp(out io.Writer) *cli.App {
	h := &helix{out: out}
	return &cli.App{
		Name:      "helix",
		Usage:     "anonymous DNA provenance ledger",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "configuration file",
				Value:   config.DefaultPath,
				EnvVars: []string{"HELIX_CONFIG"},
			},
			&cli.PathFlag{
				Name:  "data-dir",
				Usage: "directory of the record store, overrides data_dir",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error, overrides log_level",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on this address while the command runs",
			},
		},
		Commands: []*cli.Command{
			addCmd(h),
			verifyCmd(h),
			findCmd(h),
			similarCmd(h),
			chainCmd(h),
			shellCmd(h),
		},
		After: func(*cli.Context) error {
			return h.close()
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
