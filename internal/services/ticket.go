package services

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"

	"tixpack/internal/models"
	"tixpack/internal/repositories"
	"tixpack/internal/shared"
)

// TicketService manages individual tickets and their movement between the
// unallocated pool and packages.
type TicketService struct {
	store    *repositories.TicketStore
	packages *repositories.PackageStore
	logger   *log.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(store *repositories.TicketStore, packages *repositories.PackageStore, logger *log.Logger) *TicketService {
	return &TicketService{store: store, packages: packages, logger: logger}
}

// TotalCount returns the number of tickets.
func (s *TicketService) TotalCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// GetTicket retrieves a ticket snapshot, or nil when absent.
func (s *TicketService) GetTicket(ctx context.Context, id int) (*models.Ticket, error) {
	ticket, err := s.store.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return ticket, err
}

// GetTickets retrieves all tickets ordered by number.
func (s *TicketService) GetTickets(ctx context.Context) ([]*models.Ticket, error) {
	return s.store.GetAll(ctx)
}

// Create inserts a new ticket. A nil PackageID leaves it in the
// unallocated pool.
func (s *TicketService) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	created, err := s.store.Create(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket created", "id", created.ID, "number", created.Number)
	return created, nil
}

// Edit writes a ticket using the caller's row version.
func (s *TicketService) Edit(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	updated, err := s.store.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket edited", "id", updated.ID)
	return updated, nil
}

// Remove hard-deletes a ticket.
func (s *TicketService) Remove(ctx context.Context, id int) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ticket removed", "id", id)
	return nil
}

// DetachTicket parks an allocated ticket back into the unallocated pool.
// The ticket keeps its number, color and serial for future reallocation.
func (s *TicketService) DetachTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	if ticket.PackageID == nil {
		return nil, fmt.Errorf("ticket %d is not allocated: %w", ticket.ID, shared.ErrWrongState)
	}

	detached, err := s.store.Detach(ctx, ticket)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket detached", "id", ticket.ID)
	return detached, nil
}

// GetUnallocatedTickets returns a lazy sequence of the unallocated tickets
// eligible for the package, in ascending number order. Each traversal
// re-queries current state, so the sequence is restartable and reflects
// moves made between traversals. A special package without both a color
// and a serial yields nothing.
func (s *TicketService) GetUnallocatedTickets(ctx context.Context, packageID int) iter.Seq2[*models.Ticket, error] {
	return func(yield func(*models.Ticket, error) bool) {
		pkg, err := s.packages.GetByID(ctx, packageID)
		if err != nil {
			yield(nil, err)
			return
		}
		if pkg.ColorID == nil || pkg.SerialID == nil {
			return
		}

		tickets, err := s.store.Unallocated(ctx, *pkg.ColorID, *pkg.SerialID)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, t := range tickets {
			if !yield(t, nil) {
				return
			}
		}
	}
}

// CountUnallocatedByPackage returns how many unallocated tickets are
// eligible to move into the package.
func (s *TicketService) CountUnallocatedByPackage(ctx context.Context, packageID int) (int, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return 0, err
	}
	if pkg.ColorID == nil || pkg.SerialID == nil {
		return 0, nil
	}
	return s.store.CountUnallocated(ctx, *pkg.ColorID, *pkg.SerialID)
}

// ValidateMoveFewToPackage accumulates every rule the proposed move
// violates: the target must exist and be open, the id list must be
// non-empty, and each ticket must exist and be unallocated.
func (s *TicketService) ValidateMoveFewToPackage(ctx context.Context, packageID int, ticketIDs []int) (ValidationErrors, error) {
	var errs ValidationErrors

	if len(ticketIDs) == 0 {
		errs = append(errs, "No tickets selected to move.")
	}

	pkg, err := s.packages.GetByID(ctx, packageID)
	if errors.Is(err, shared.ErrNotFound) {
		errs = append(errs, fmt.Sprintf("Package %d does not exist.", packageID))
		return errs, nil
	}
	if err != nil {
		return nil, err
	}
	if !pkg.IsOpened {
		errs = append(errs, fmt.Sprintf("Package %d is closed.", packageID))
	}

	for _, id := range ticketIDs {
		ticket, err := s.store.GetByID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			errs = append(errs, fmt.Sprintf("Ticket %d does not exist.", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		if ticket.PackageID != nil {
			errs = append(errs, fmt.Sprintf("Ticket %d is already allocated.", id))
		}
	}
	return errs, nil
}

// MoveFewToPackage validates and then moves the listed unallocated tickets
// into the target package as one all-or-nothing batch.
func (s *TicketService) MoveFewToPackage(ctx context.Context, packageID int, ticketIDs []int) error {
	errs, err := s.ValidateMoveFewToPackage(ctx, packageID, ticketIDs)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}

	if err := s.store.MoveToPackage(ctx, packageID, ticketIDs); err != nil {
		return err
	}

	s.logger.Info("tickets moved", "package", packageID, "count", len(ticketIDs))
	return nil
}
