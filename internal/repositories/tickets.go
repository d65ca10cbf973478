package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// TicketStore implements [models.Store] for individual tickets.
type TicketStore struct {
	db *sql.DB
}

var _ models.Store[*models.Ticket] = (*TicketStore)(nil)

// NewTicketStore creates a new TicketStore with the given database connection
func NewTicketStore(db *sql.DB) *TicketStore {
	return &TicketStore{db: db}
}

const ticketColumns = "id, number, color_id, serial_id, package_id, note, row_version"

// Count returns the number of tickets.
func (s *TicketStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}

// CountByPackage returns the number of tickets allocated to the package.
func (s *TicketStore) CountByPackage(ctx context.Context, packageID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE package_id = ?", packageID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count package tickets: %w", err)
	}
	return n, nil
}

// CountUnallocated returns the number of unallocated tickets matching the
// color and serial.
func (s *TicketStore) CountUnallocated(ctx context.Context, colorID, serialID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tickets WHERE package_id IS NULL AND color_id = ? AND serial_id = ?",
		colorID, serialID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unallocated tickets: %w", err)
	}
	return n, nil
}

// ExistsByID reports whether a ticket with the id exists.
func (s *TicketStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tickets WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket existence: %w", err)
	}
	return exists, nil
}

// GetAll retrieves all tickets ordered by number.
func (s *TicketStore) GetAll(ctx context.Context) ([]*models.Ticket, error) {
	return s.query(ctx, fmt.Sprintf("SELECT %s FROM tickets ORDER BY number", ticketColumns))
}

// GetByPackage retrieves the tickets allocated to a package, in insertion
// order or by ascending number.
func (s *TicketStore) GetByPackage(ctx context.Context, packageID int, orderByNumber bool) ([]*models.Ticket, error) {
	order := "id"
	if orderByNumber {
		order = "number"
	}
	return s.query(ctx,
		fmt.Sprintf("SELECT %s FROM tickets WHERE package_id = ? ORDER BY %s", ticketColumns, order),
		packageID)
}

// Unallocated retrieves detached tickets matching the color and serial,
// ordered by ascending number.
func (s *TicketStore) Unallocated(ctx context.Context, colorID, serialID int) ([]*models.Ticket, error) {
	return s.query(ctx,
		fmt.Sprintf("SELECT %s FROM tickets WHERE package_id IS NULL AND color_id = ? AND serial_id = ? ORDER BY number",
			ticketColumns),
		colorID, serialID)
}

// GetByID retrieves a ticket by id.
func (s *TicketStore) GetByID(ctx context.Context, id int) (*models.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM tickets WHERE id = ?", ticketColumns), id)

	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new ticket and returns its snapshot with the issued id
// and row version.
func (s *TicketStore) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	version := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tickets (number, color_id, serial_id, package_id, note, row_version) VALUES (?, ?, ?, ?, ?, ?)",
		ticket.Number, ticket.ColorID, ticket.SerialID, optInt(ticket.PackageID), ticket.Note, version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ticket: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	created := *ticket
	created.ID = int(id)
	created.RowVersion = version
	return &created, nil
}

// Update writes the ticket conditionally on its row version, issuing a fresh
// version on success.
func (s *TicketStore) Update(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	next := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET number = ?, color_id = ?, serial_id = ?, package_id = ?, note = ?, row_version = ?
		WHERE id = ? AND row_version = ?`,
		ticket.Number, ticket.ColorID, ticket.SerialID, optInt(ticket.PackageID), ticket.Note, next,
		ticket.ID, ticket.RowVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		exists, err := s.ExistsByID(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("ticket %d: %w", ticket.ID, shared.ErrConflict)
		}
		return nil, fmt.Errorf("ticket %d: %w", ticket.ID, shared.ErrNotFound)
	}

	updated := *ticket
	updated.RowVersion = next
	return &updated, nil
}

// Remove hard-deletes a ticket by id.
func (s *TicketStore) Remove(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("ticket %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// MoveToPackage reassigns each listed unallocated ticket to the target
// package inside one transaction. Either every ticket moves or none do: a
// ticket that is missing or already allocated rolls the whole batch back.
func (s *TicketStore) MoveToPackage(ctx context.Context, packageID int, ticketIDs []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ticketIDs {
		res, err := tx.ExecContext(ctx,
			"UPDATE tickets SET package_id = ?, row_version = ? WHERE id = ? AND package_id IS NULL",
			packageID, shared.NewRowVersion(), id)
		if err != nil {
			return fmt.Errorf("failed to move ticket %d: %w", id, err)
		}

		rows, err := affected(res)
		if err != nil {
			return err
		}
		if rows == 0 {
			exists, err := ticketExistsTx(ctx, tx, id)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("ticket %d is already allocated: %w", id, shared.ErrWrongState)
			}
			return fmt.Errorf("ticket %d: %w", id, shared.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ticket move: %w", err)
	}
	return nil
}

// Detach parks an allocated ticket as unallocated, conditionally on its row
// version. The ticket keeps its number, color and serial.
func (s *TicketStore) Detach(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	detached := *ticket
	detached.PackageID = nil
	return s.Update(ctx, &detached)
}

func ticketExistsTx(ctx context.Context, tx *sql.Tx, id int) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tickets WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket existence: %w", err)
	}
	return exists, nil
}

func (s *TicketStore) query(ctx context.Context, query string, args ...any) ([]*models.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tickets, nil
}

// scanTicket scans one ticket row into a detached snapshot.
func scanTicket(row scanner) (*models.Ticket, error) {
	var (
		t         models.Ticket
		packageID sql.NullInt64
	)

	err := row.Scan(&t.ID, &t.Number, &t.ColorID, &t.SerialID, &packageID, &t.Note, &t.RowVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}

	t.PackageID = nullInt(packageID)
	return &t, nil
}
