package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// TicketAdd inserts a ticket into the unallocated pool.
func (r *Runner) TicketAdd(ctx context.Context, cmd *cli.Command) error {
	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := a.tickets.Create(ctx, &models.Ticket{
		Number:   cmd.Int("number"),
		ColorID:  cmd.Int("color"),
		SerialID: cmd.Int("serial"),
		Note:     cmd.String("note"),
	})
	if err != nil {
		return err
	}

	r.writePlain("✓ Ticket %d added: № %06d\n", created.ID, created.Number)
	return nil
}

// TicketUnallocated lists the unallocated tickets eligible for a package.
func (r *Runner) TicketUnallocated(ctx context.Context, cmd *cli.Command) error {
	packageID := cmd.IntArg("package")
	if err := requireID(packageID); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pkg, err := a.packages.GetPackage(ctx, packageID)
	if err != nil {
		return err
	}
	if pkg == nil {
		return fmt.Errorf("package %d: %w", packageID, shared.ErrNotFound)
	}

	label, err := a.packages.PackageLabel(ctx, pkg)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Unallocated tickets for %s", label))
	count := 0
	for t, err := range a.tickets.GetUnallocatedTickets(ctx, packageID) {
		if err != nil {
			return err
		}
		r.writePlain("  %5d  № %06d\n", t.ID, t.Number)
		count++
	}
	if count == 0 {
		r.writePlain("  (none)\n")
	}
	return nil
}

// TicketMove moves the listed unallocated tickets into an open package as one
// all-or-nothing batch.
func (r *Runner) TicketMove(ctx context.Context, cmd *cli.Command) error {
	packageID := cmd.Int("package")
	ids := cmd.IntSlice("id")

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tickets.MoveFewToPackage(ctx, packageID, ids); err != nil {
		return r.reportValidation(err)
	}

	r.writePlain("✓ Moved %d tickets into package %d\n", len(ids), packageID)
	return nil
}

// TicketDetach parks an allocated ticket back into the unallocated pool.
func (r *Runner) TicketDetach(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ticket, err := a.tickets.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	if ticket == nil {
		return fmt.Errorf("ticket %d: %w", id, shared.ErrNotFound)
	}

	if _, err := a.tickets.DetachTicket(ctx, ticket); err != nil {
		return err
	}

	r.writePlain("✓ Ticket %d detached\n", id)
	return nil
}

// TicketRemove removes a ticket.
func (r *Runner) TicketRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := requireID(id); err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tickets.Remove(ctx, id); err != nil {
		return err
	}

	r.writePlain("✓ Ticket %d removed\n", id)
	return nil
}
