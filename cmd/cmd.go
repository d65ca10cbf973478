// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, colorCommand, serialCommand, packageCommand, ticketCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setupCommand handles database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}

// colorCommand handles the color reference catalog.
func colorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "color",
		Usage: "Manage the color catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List colors with dependent counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.ColorList,
			},
			{
				Name:      "create",
				Usage:     "Create a color",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.ColorCreate,
			},
			{
				Name:      "rename",
				Usage:     "Rename a color",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}, &cli.StringArg{Name: "name"}},
				Action:    r.ColorRename,
			},
			{
				Name:      "remove",
				Usage:     "Remove a color with no dependents",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.ColorRemove,
			},
		},
	}
}

// serialCommand handles the serial reference catalog.
func serialCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serial",
		Usage: "Manage the serial catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List serials with dependent counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.SerialList,
			},
			{
				Name:      "create",
				Usage:     "Create a serial",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.SerialCreate,
			},
			{
				Name:      "rename",
				Usage:     "Rename a serial",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}, &cli.StringArg{Name: "name"}},
				Action:    r.SerialRename,
			},
			{
				Name:      "remove",
				Usage:     "Remove a serial with no dependents",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.SerialRemove,
			},
		},
	}
}

// packageCommand handles package lifecycle operations.
func packageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "package",
		Aliases: []string{"pkg"},
		Usage:   "Manage ticket packages",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List packages",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Usage: "Status tab: all, opened, closed, special, default", Value: "all"},
					&cli.IntFlag{Name: "color", Usage: "Filter by color id"},
					&cli.IntFlag{Name: "serial", Usage: "Filter by serial id"},
					&cli.StringFlag{Name: "name", Usage: "Filter by name fragment"},
					&cli.BoolFlag{Name: "sort-name", Usage: "Sort by display name instead of insertion order"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of packages to return"},
					&cli.IntFlag{Name: "offset", Usage: "Number of packages to skip"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.PackageList,
			},
			{
				Name:      "show",
				Usage:     "Show a package and its tickets",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.PackageShow,
			},
			{
				Name:   "stats",
				Usage:  "Show package counts",
				Action: r.PackageStats,
			},
			{
				Name:  "create",
				Usage: "Create a default package",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "color", Usage: "Color id", Required: true},
					&cli.IntFlag{Name: "serial", Usage: "Serial id", Required: true},
					&cli.IntFlag{Name: "first-number", Usage: "Starting ticket number", Value: -1},
					&cli.FloatFlag{Name: "nominal", Usage: "Ticket face value"},
					&cli.StringFlag{Name: "note", Usage: "Free-text note"},
				},
				Action: r.PackageCreate,
			},
			{
				Name:  "create-special",
				Usage: "Create a special package with a unique name",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Unique package name", Required: true},
					&cli.IntFlag{Name: "color", Usage: "Optional color id", Value: -1},
					&cli.IntFlag{Name: "serial", Usage: "Optional serial id", Value: -1},
					&cli.FloatFlag{Name: "nominal", Usage: "Ticket face value"},
					&cli.StringFlag{Name: "note", Usage: "Free-text note"},
				},
				Action: r.PackageCreateSpecial,
			},
			{
				Name:      "edit",
				Usage:     "Edit a default package",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "color", Usage: "Color id", Value: -1},
					&cli.IntFlag{Name: "serial", Usage: "Serial id", Value: -1},
					&cli.IntFlag{Name: "first-number", Usage: "Starting ticket number", Value: -1},
					&cli.FloatFlag{Name: "nominal", Usage: "Ticket face value", Value: -1},
					&cli.StringFlag{Name: "note", Usage: "Free-text note"},
				},
				Action: r.PackageEdit,
			},
			{
				Name:      "edit-special",
				Usage:     "Edit a special package",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Unique package name"},
					&cli.FloatFlag{Name: "nominal", Usage: "Ticket face value", Value: -1},
					&cli.StringFlag{Name: "note", Usage: "Free-text note"},
				},
				Action: r.PackageEditSpecial,
			},
			{
				Name:      "open",
				Usage:     "Open a closed package for allocation",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.PackageOpen,
			},
			{
				Name:      "close",
				Usage:     "Close an open package",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.PackageClose,
			},
			{
				Name:      "make-special",
				Usage:     "Convert a default package to special",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}, &cli.StringArg{Name: "name"}},
				Action:    r.PackageMakeSpecial,
			},
			{
				Name:      "make-default",
				Usage:     "Convert a special package back to default",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "color", Usage: "Color id", Required: true},
					&cli.IntFlag{Name: "serial", Usage: "Serial id", Required: true},
					&cli.IntFlag{Name: "first-number", Usage: "Starting ticket number", Value: -1},
				},
				Action: r.PackageMakeDefault,
			},
			{
				Name:      "remove",
				Usage:     "Remove a package with no tickets",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.PackageRemove,
			},
		},
	}
}

// ticketCommand handles individual tickets and reallocation.
func ticketCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ticket",
		Usage: "Manage tickets and reallocation",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a ticket to the unallocated pool",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "number", Usage: "Ticket number", Required: true},
					&cli.IntFlag{Name: "color", Usage: "Color id", Required: true},
					&cli.IntFlag{Name: "serial", Usage: "Serial id", Required: true},
					&cli.StringFlag{Name: "note", Usage: "Free-text note"},
				},
				Action: r.TicketAdd,
			},
			{
				Name:      "unallocated",
				Usage:     "List unallocated tickets eligible for a package",
				Arguments: []cli.Argument{&cli.IntArg{Name: "package"}},
				Action:    r.TicketUnallocated,
			},
			{
				Name:  "move",
				Usage: "Move unallocated tickets into an open package",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "package", Usage: "Target package id", Required: true},
					&cli.IntSliceFlag{Name: "id", Usage: "Ticket id to move (repeatable)"},
				},
				Action: r.TicketMove,
			},
			{
				Name:      "detach",
				Usage:     "Park an allocated ticket back into the unallocated pool",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.TicketDetach,
			},
			{
				Name:      "remove",
				Usage:     "Remove a ticket",
				Arguments: []cli.Argument{&cli.IntArg{Name: "id"}},
				Action:    r.TicketRemove,
			},
		},
	}
}

// exportCommand handles package listing exports.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the package listing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Output file path (.csv, .md or plain text)",
				Required: true,
			},
			&cli.StringFlag{Name: "filter", Usage: "Status tab: all, opened, closed, special, default", Value: "all"},
			&cli.IntFlag{Name: "package", Usage: "Export one package's tickets as CSV instead", Value: -1},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for the package inventory",
		Action:  r.TUI,
	}
}
