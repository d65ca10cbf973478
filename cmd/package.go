package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// PackageList prints packages matching the listing flags.
func (r *Runner) PackageList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	filter, err := parseFilterFlag(cmd.String("filter"))
	if err != nil {
		return err
	}

	q := models.PackageQuery{
		Filter:     filter,
		ColorID:    cmd.Int("color"),
		SerialID:   cmd.Int("serial"),
		Name:       cmd.String("name"),
		Limit:      cmd.Int("limit"),
		Offset:     cmd.Int("offset"),
		SortByName: cmd.Bool("sort-name"),
	}
	if q.Limit == 0 {
		q.Limit = r.config.Listing.PageSize
	}

	packages, err := a.packages.GetPackages(ctx, q)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(packages, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Packages: %s (%d)", q.Filter, len(packages)))
	for _, pkg := range packages {
		state := "closed"
		if pkg.IsOpened {
			state = "open  "
		}
		kind := "       "
		if pkg.IsSpecial {
			kind = "special"
		}
		r.writePlain("%4d  %-30s %s %s tickets: %d\n", pkg.ID, pkg.Label(), state, kind, pkg.TicketsCount)
	}
	return nil
}

// PackageShow prints one package and its allocated tickets.
func (r *Runner) PackageShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pkg, err := a.packages.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	if pkg == nil {
		return fmt.Errorf("package %d: %w", id, shared.ErrNotFound)
	}

	label, err := a.packages.PackageLabel(ctx, pkg)
	if err != nil {
		return err
	}
	colorName, serialName, err := describeCatalogs(ctx, a, pkg.ColorID, pkg.SerialID)
	if err != nil {
		return err
	}

	tickets, err := a.packages.GetPackageTickets(ctx, id, true)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Package %d: %s", pkg.ID, label))
	r.writePlain("Color: %s\nSerial: %s\n", colorName, serialName)
	if pkg.FirstNumber != nil {
		r.writePlain("First number: %06d\n", *pkg.FirstNumber)
	}
	r.writePlain("Nominal: %.2f\nSpecial: %v\nOpened: %v\n", pkg.Nominal, pkg.IsSpecial, pkg.IsOpened)
	if pkg.Note != "" {
		r.writePlain("Note: %s\n", pkg.Note)
	}

	r.writePlainln("Tickets (%d):", len(tickets))
	for _, t := range tickets {
		r.writePlain("  %5d  № %06d\n", t.ID, t.Number)
	}

	if !pkg.IsSpecial {
		unallocated, err := a.tickets.CountUnallocatedByPackage(ctx, id)
		if err != nil {
			return err
		}
		r.writePlain("Unallocated matching: %d\n", unallocated)
	}
	return nil
}

// PackageStats prints total, opened and special package counts.
func (r *Runner) PackageStats(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	total, err := a.packages.TotalCount(ctx)
	if err != nil {
		return err
	}
	opened, err := a.packages.OpenedCount(ctx)
	if err != nil {
		return err
	}
	special, err := a.packages.SpecialCount(ctx)
	if err != nil {
		return err
	}

	r.writePlainHeader("Package inventory")
	r.writePlain("Total: %d\nOpened: %d\nSpecial: %d\n", total, opened, special)
	return nil
}

// PackageCreate creates a default package from the identity flags.
func (r *Runner) PackageCreate(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
		ColorID:     cmd.Int("color"),
		SerialID:    cmd.Int("serial"),
		FirstNumber: optFlagInt(cmd.Int("first-number")),
		Nominal:     cmd.Float("nominal"),
		Note:        cmd.String("note"),
	})
	if err != nil {
		return r.reportValidation(err)
	}

	label, err := a.packages.PackageLabel(ctx, created)
	if err != nil {
		return err
	}
	r.writePlain("✓ Package %d created: %s\n", created.ID, label)
	return nil
}

// PackageCreateSpecial creates a special package under a unique name.
func (r *Runner) PackageCreateSpecial(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{
		Name:     cmd.String("name"),
		ColorID:  optFlagInt(cmd.Int("color")),
		SerialID: optFlagInt(cmd.Int("serial")),
		Nominal:  cmd.Float("nominal"),
		Note:     cmd.String("note"),
	})
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Special package %d created: %s\n", created.ID, *created.Name)
	return nil
}

// PackageEdit edits a default package, re-reading its edit projection so the
// write carries the current row version and untouched fields keep their values.
func (r *Runner) PackageEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	edit, err := a.packages.GetPackageEdit(ctx, id)
	if err != nil {
		return err
	}
	if edit == nil {
		return fmt.Errorf("package %d: %w", id, shared.ErrNotFound)
	}

	if v := cmd.Int("color"); v >= 0 {
		edit.ColorID = v
	}
	if v := cmd.Int("serial"); v >= 0 {
		edit.SerialID = v
	}
	if v := cmd.Int("first-number"); v >= 0 {
		edit.FirstNumber = &v
	}
	if v := cmd.Float("nominal"); v >= 0 {
		edit.Nominal = v
	}
	if cmd.IsSet("note") {
		edit.Note = cmd.String("note")
	}

	updated, err := a.packages.EditDefault(ctx, *edit)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Package %d updated\n", updated.ID)
	return nil
}

// PackageEditSpecial edits a special package the same way.
func (r *Runner) PackageEditSpecial(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	edit, err := a.packages.GetSpecialPackageEdit(ctx, id)
	if err != nil {
		return err
	}
	if edit == nil {
		return fmt.Errorf("package %d: %w", id, shared.ErrNotFound)
	}

	if cmd.IsSet("name") {
		edit.Name = cmd.String("name")
	}
	if v := cmd.Float("nominal"); v >= 0 {
		edit.Nominal = v
	}
	if cmd.IsSet("note") {
		edit.Note = cmd.String("note")
	}

	updated, err := a.packages.EditSpecial(ctx, *edit)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Package %d updated\n", updated.ID)
	return nil
}

// PackageOpen opens a closed package, rejecting a redundant call here so the
// service can stay unconditional.
func (r *Runner) PackageOpen(ctx context.Context, cmd *cli.Command) error {
	return r.setPackageState(ctx, cmd.IntArg("id"), true)
}

// PackageClose closes an open package.
func (r *Runner) PackageClose(ctx context.Context, cmd *cli.Command) error {
	return r.setPackageState(ctx, cmd.IntArg("id"), false)
}

func (r *Runner) setPackageState(ctx context.Context, id int, open bool) error {
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pkg, err := a.packages.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	if pkg == nil {
		return fmt.Errorf("package %d: %w", id, shared.ErrNotFound)
	}
	if pkg.IsOpened == open {
		state := "closed"
		if open {
			state = "open"
		}
		return fmt.Errorf("package %d is already %s: %w", id, state, shared.ErrWrongState)
	}

	if open {
		_, err = a.packages.Open(ctx, id)
	} else {
		_, err = a.packages.Close(ctx, id)
	}
	if err != nil {
		return err
	}

	if open {
		r.writePlain("✓ Package %d opened\n", id)
	} else {
		r.writePlain("✓ Package %d closed\n", id)
	}
	return nil
}

// PackageMakeSpecial converts a default package to special.
func (r *Runner) PackageMakeSpecial(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: package name", shared.ErrMissingArgument)
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	updated, err := a.packages.MakeSpecial(ctx, id, name)
	if err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Package %d is now special: %s\n", updated.ID, *updated.Name)
	return nil
}

// PackageMakeDefault converts a special package back to default.
func (r *Runner) PackageMakeDefault(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	updated, err := a.packages.MakeDefault(ctx, id,
		cmd.Int("color"), cmd.Int("serial"), optFlagInt(cmd.Int("first-number")))
	if err != nil {
		return r.reportValidation(err)
	}

	label, err := a.packages.PackageLabel(ctx, updated)
	if err != nil {
		return err
	}
	r.writePlain("✓ Package %d is now default: %s\n", updated.ID, label)
	return nil
}

// PackageRemove removes a package with no tickets.
func (r *Runner) PackageRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.packages.Remove(ctx, id); err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Package %d removed\n", id)
	return nil
}
