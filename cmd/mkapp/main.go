// Command mkapp builds a single Legato app definition (.adef) in
// isolation, staging its components, config tree, and manifest without
// resolving bindings against the rest of a system (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/legato-af/mktools/internal/buildparams"
	"github.com/legato-af/mktools/internal/frontend"
)

func main() {
	app := &cli.App{
		Name:  "mkapp",
		Usage: "Build a Legato app definition (.adef) into a staged app bundle",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Target device type (e.g. wp76xx)", Required: true},
			&cli.StringFlag{Name: "object-dir", Aliases: []string{"w"}, Usage: "Working directory for generated output", Value: "_build"},
			&cli.StringSliceFlag{Name: "source-search", Aliases: []string{"s"}, Usage: "Directory to search for component sources"},
			&cli.StringSliceFlag{Name: "interface-search", Aliases: []string{"i"}, Usage: "Directory to search for .api files"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show verbose diagnostic output"},
		},
		ArgsUsage: "ADEF_FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one .adef path is required", 1)
			}
			p := &buildparams.Params{
				Target:        c.String("target"),
				WorkDir:       c.String("object-dir"),
				SourceDirs:    c.StringSlice("source-search"),
				InterfaceDirs: c.StringSlice("interface-search"),
				Verbose:       c.Bool("verbose"),
			}
			res, err := frontend.BuildApp(c.Args().Get(0), p)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			for _, d := range res.Bag.All() {
				fmt.Fprintln(os.Stderr, d.Error())
			}
			if res.Bag.HasFatal() {
				return cli.Exit("app build failed", 1)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
