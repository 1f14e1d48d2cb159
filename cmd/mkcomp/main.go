// Command mkcomp generates one component's client/server interface
// headers from its .cdef, without staging a whole app (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/legato-af/mktools/internal/buildparams"
	"github.com/legato-af/mktools/internal/frontend"
	"github.com/legato-af/mktools/internal/modeller"
)

func main() {
	app := &cli.App{
		Name:  "mkcomp",
		Usage: "Generate a component's interface headers from its .cdef",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Target device type (e.g. wp76xx)", Required: true},
			&cli.StringFlag{Name: "object-dir", Aliases: []string{"w"}, Usage: "Working directory for generated output", Value: "_build"},
			&cli.StringSliceFlag{Name: "interface-search", Aliases: []string{"i"}, Usage: "Directory to search for .api files"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show verbose diagnostic output"},
		},
		ArgsUsage: "COMPONENT_DIR",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one component directory is required", 1)
			}
			p := &buildparams.Params{
				Target:        c.String("target"),
				WorkDir:       c.String("object-dir"),
				InterfaceDirs: c.StringSlice("interface-search"),
				Verbose:       c.Bool("verbose"),
			}
			if diag := p.Validate(); diag != nil {
				return cli.Exit(diag.Error(), 1)
			}

			m := modeller.New("", p.AllSearchDirs())
			comp, diag := m.LoadComponent(c.Args().Get(0))
			if diag != nil {
				return cli.Exit(diag.Error(), 1)
			}
			if err := frontend.BuildComponent(comp, p); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
