// Command mkexe builds a single free-standing executable from a list
// of component directories given directly on the command line, with no
// owning app (spec.md §6).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/legato-af/mktools/internal/buildparams"
	"github.com/legato-af/mktools/internal/frontend"
)

func main() {
	app := &cli.App{
		Name:  "mkexe",
		Usage: "Build a single executable from component directories",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Target device type (e.g. wp76xx)", Required: true},
			&cli.StringFlag{Name: "object-dir", Aliases: []string{"w"}, Usage: "Working directory for generated output", Value: "_build"},
			&cli.StringSliceFlag{Name: "component", Aliases: []string{"c"}, Usage: "Component directory to link into the executable", Required: true},
			&cli.StringSliceFlag{Name: "interface-search", Aliases: []string{"i"}, Usage: "Directory to search for .api files"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show verbose diagnostic output"},
		},
		ArgsUsage: "EXE_PATH",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one executable path is required", 1)
			}
			p := &buildparams.Params{
				Target:        c.String("target"),
				WorkDir:       c.String("object-dir"),
				InterfaceDirs: c.StringSlice("interface-search"),
				Verbose:       c.Bool("verbose"),
			}
			name := filepath.Base(c.Args().Get(0))
			bag, err := frontend.BuildExe(name, c.StringSlice("component"), p)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			for _, d := range bag.All() {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			if bag.HasFatal() {
				return cli.Exit("executable build failed", 1)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
