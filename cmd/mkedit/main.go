// Command mkedit performs byte-accurate add/remove/rename edits on an
// .sdef (apps, modules) or one app's .adef (component references)
// without reformatting anything else in the file (spec.md §6 "mkedit
// {add|remove|rename} {app|module|component} … --sdef <path>").
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/legato-af/mktools/internal/edit"
)

func sdefFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "sdef", Usage: "Path to the system definition to edit", Required: true}
}

func adefFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "adef", Usage: "Path to the app definition containing the executable", Required: true}
}

func exeFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "exe", Usage: "Name of the executable to edit", Required: true}
}

func main() {
	app := &cli.App{
		Name:  "mkedit",
		Usage: "Add, remove, or rename entries in a .sdef/.adef without reformatting it",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add an app or module reference",
				Subcommands: []*cli.Command{
					{
						Name:      "app",
						ArgsUsage: "ADEF_PATH",
						Flags:     []cli.Flag{sdefFlag()},
						Action: func(c *cli.Context) error {
							return runEdit(func() error { return edit.AddApp(c.String("sdef"), c.Args().Get(0)) })
						},
					},
					{
						Name:      "module",
						ArgsUsage: "MDEF_PATH",
						Flags:     []cli.Flag{sdefFlag()},
						Action: func(c *cli.Context) error {
							return runEdit(func() error { return edit.AddModule(c.String("sdef"), c.Args().Get(0)) })
						},
					},
					{
						Name:      "component",
						ArgsUsage: "COMPONENT_PATH",
						Flags:     []cli.Flag{adefFlag(), exeFlag()},
						Action: func(c *cli.Context) error {
							return runEdit(func() error {
								return edit.AddComponent(c.String("adef"), c.String("exe"), c.Args().Get(0))
							})
						},
					},
				},
			},
			{
				Name:  "remove",
				Usage: "Remove an app or module reference",
				Subcommands: []*cli.Command{
					{
						Name:      "app",
						ArgsUsage: "APP_NAME",
						Flags:     []cli.Flag{sdefFlag()},
						Action: func(c *cli.Context) error {
							return runEdit(func() error { return edit.RemoveApp(c.String("sdef"), c.Args().Get(0)) })
						},
					},
					{
						Name:      "module",
						ArgsUsage: "MODULE_NAME",
						Flags:     []cli.Flag{sdefFlag()},
						Action: func(c *cli.Context) error {
							return runEdit(func() error { return edit.RemoveModule(c.String("sdef"), c.Args().Get(0)) })
						},
					},
					{
						Name:      "component",
						ArgsUsage: "COMPONENT_PATH",
						Flags:     []cli.Flag{adefFlag(), exeFlag()},
						Action: func(c *cli.Context) error {
							return runEdit(func() error {
								return edit.RemoveComponent(c.String("adef"), c.String("exe"), c.Args().Get(0))
							})
						},
					},
				},
			},
			{
				Name:  "rename",
				Usage: "Rename an app entry or a component reference inside an executable",
				Subcommands: []*cli.Command{
					{
						Name:      "app",
						ArgsUsage: "OLD_NAME NEW_NAME",
						Flags:     []cli.Flag{sdefFlag()},
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return cli.Exit("rename app requires OLD_NAME NEW_NAME", 1)
							}
							return runEdit(func() error {
								return edit.RenameApp(c.String("sdef"), c.Args().Get(0), c.Args().Get(1))
							})
						},
					},
					{
						Name:      "module",
						ArgsUsage: "OLD_NAME NEW_NAME",
						Flags:     []cli.Flag{sdefFlag()},
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return cli.Exit("rename module requires OLD_NAME NEW_NAME", 1)
							}
							return runEdit(func() error {
								return edit.RenameModule(c.String("sdef"), c.Args().Get(0), c.Args().Get(1))
							})
						},
					},
					{
						Name:      "component",
						Usage:     "Rename a component reference within one executable, propagating a matching processes: run: reference",
						ArgsUsage: "OLD_COMPONENT_PATH NEW_COMPONENT_PATH",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "adef", Usage: "Path to the .adef containing the executable", Required: true},
							&cli.StringFlag{Name: "exe", Usage: "Name of the executable referencing the component", Required: true},
						},
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return cli.Exit("rename component requires OLD_COMPONENT_PATH NEW_COMPONENT_PATH", 1)
							}
							return runEdit(func() error {
								return edit.RenameComponentWithRunReference(c.String("adef"), c.String("exe"), c.Args().Get(0), c.Args().Get(1))
							})
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEdit(fn func() error) error {
	if err := fn(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
