package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tixpack/internal/shared"
)

// ColorList prints the color catalog with dependent counts.
func (r *Runner) ColorList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	colors, err := a.colors.GetColors(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(colors, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Colors (%d)", len(colors)))
	for _, c := range colors {
		r.writePlain("%3d  %-20s packages: %d  tickets: %d\n", c.ID, c.Name, c.PackagesCount, c.TicketsCount)
	}
	return nil
}

// ColorCreate creates a color from the positional name argument.
func (r *Runner) ColorCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: color name", shared.ErrMissingArgument)
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.colors.Create(ctx, name)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Color %d created: %s\n", created.ID, created.Name)
	return nil
}

// ColorRename renames a color, re-reading its current row version first.
func (r *Runner) ColorRename(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: color name", shared.ErrMissingArgument)
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	edit, err := a.colors.GetColorEdit(ctx, id)
	if err != nil {
		return err
	}
	if edit == nil {
		return fmt.Errorf("color %d: %w", id, shared.ErrNotFound)
	}

	edit.Name = name
	updated, err := a.colors.Edit(ctx, *edit)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Color %d renamed to %s\n", updated.ID, updated.Name)
	return nil
}

// ColorRemove removes a color that no package or ticket references.
func (r *Runner) ColorRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.colors.Remove(ctx, id); err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Color %d removed\n", id)
	return nil
}

// SerialList prints the serial catalog with dependent counts.
func (r *Runner) SerialList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	serials, err := a.serials.GetSerials(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(serials, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Serials (%d)", len(serials)))
	for _, s := range serials {
		r.writePlain("%3d  %-20s packages: %d  tickets: %d\n", s.ID, s.Name, s.PackagesCount, s.TicketsCount)
	}
	return nil
}

// SerialCreate creates a serial from the positional name argument.
func (r *Runner) SerialCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: serial name", shared.ErrMissingArgument)
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.serials.Create(ctx, name)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Serial %d created: %s\n", created.ID, created.Name)
	return nil
}

// SerialRename renames a serial, re-reading its current row version first.
func (r *Runner) SerialRename(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: serial name", shared.ErrMissingArgument)
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	edit, err := a.serials.GetSerialEdit(ctx, id)
	if err != nil {
		return err
	}
	if edit == nil {
		return fmt.Errorf("serial %d: %w", id, shared.ErrNotFound)
	}

	edit.Name = name
	updated, err := a.serials.Edit(ctx, *edit)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Serial %d renamed to %s\n", updated.ID, updated.Name)
	return nil
}

// SerialRemove removes a serial that no package or ticket references.
func (r *Runner) SerialRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.serials.Remove(ctx, id); err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Serial %d removed\n", id)
	return nil
}

// describeCatalogs resolves display names for an optional color and serial pair.
func describeCatalogs(ctx context.Context, a *app, colorID, serialID *int) (string, string, error) {
	colorName, serialName := "-", "-"

	if colorID != nil {
		color, err := a.colors.GetColor(ctx, *colorID)
		if err != nil {
			return "", "", err
		}
		if color != nil {
			colorName = color.Name
		}
	}
	if serialID != nil {
		serial, err := a.serials.GetSerial(ctx, *serialID)
		if err != nil {
			return "", "", err
		}
		if serial != nil {
			serialName = serial.Name
		}
	}
	return colorName, serialName, nil
}

// optFlagInt converts a sentinel-valued int flag into an optional id.
func optFlagInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}
