package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// SerialStore implements [models.Store] for the serial reference catalog.
type SerialStore struct {
	db *sql.DB
}

var _ models.Store[*models.Serial] = (*SerialStore)(nil)

// NewSerialStore creates a new SerialStore with the given database connection
func NewSerialStore(db *sql.DB) *SerialStore {
	return &SerialStore{db: db}
}

// Count returns the number of serials.
func (s *SerialStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM serials").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count serials: %w", err)
	}
	return n, nil
}

// ExistsByID reports whether a serial with the id exists.
func (s *SerialStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM serials WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check serial existence: %w", err)
	}
	return exists, nil
}

// ExistsByName reports whether a serial with the name exists, case-insensitively.
func (s *SerialStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM serials WHERE name = ? COLLATE NOCASE)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check serial name: %w", err)
	}
	return exists, nil
}

// IsNameFree reports whether the name is unused by any serial other than id.
func (s *SerialStore) IsNameFree(ctx context.Context, id int, name string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM serials WHERE name = ? COLLATE NOCASE AND id != ?)", name, id).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check serial name: %w", err)
	}
	return !taken, nil
}

// GetAll retrieves all serials in insertion order.
func (s *SerialStore) GetAll(ctx context.Context) ([]*models.Serial, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, row_version FROM serials ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query serials: %w", err)
	}
	defer rows.Close()

	var serials []*models.Serial
	for rows.Next() {
		var sr models.Serial
		if err := rows.Scan(&sr.ID, &sr.Name, &sr.RowVersion); err != nil {
			return nil, fmt.Errorf("failed to scan serial: %w", err)
		}
		serials = append(serials, &sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return serials, nil
}

// GetAllWithCounts retrieves all serials with their dependent package and
// ticket counts, for catalog listings.
func (s *SerialStore) GetAllWithCounts(ctx context.Context) ([]models.SerialInfo, error) {
	query := `
		SELECT sr.id, sr.name, sr.row_version,
			(SELECT COUNT(*) FROM packages p WHERE p.serial_id = sr.id),
			(SELECT COUNT(*) FROM tickets t WHERE t.serial_id = sr.id)
		FROM serials sr
		ORDER BY sr.id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query serials: %w", err)
	}
	defer rows.Close()

	var infos []models.SerialInfo
	for rows.Next() {
		var info models.SerialInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.RowVersion, &info.PackagesCount, &info.TicketsCount); err != nil {
			return nil, fmt.Errorf("failed to scan serial: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return infos, nil
}

// GetByID retrieves a serial by id.
func (s *SerialStore) GetByID(ctx context.Context, id int) (*models.Serial, error) {
	var sr models.Serial
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, row_version FROM serials WHERE id = ?", id).Scan(&sr.ID, &sr.Name, &sr.RowVersion)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("serial %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query serial: %w", err)
	}
	return &sr, nil
}

// Create inserts a new serial and returns its snapshot with the issued id
// and row version.
func (s *SerialStore) Create(ctx context.Context, serial *models.Serial) (*models.Serial, error) {
	version := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO serials (name, row_version) VALUES (?, ?)", serial.Name, version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert serial: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	created := *serial
	created.ID = int(id)
	created.RowVersion = version
	return &created, nil
}

// Update writes the serial conditionally on its row version, issuing a fresh
// version on success.
func (s *SerialStore) Update(ctx context.Context, serial *models.Serial) (*models.Serial, error) {
	next := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		"UPDATE serials SET name = ?, row_version = ? WHERE id = ? AND row_version = ?",
		serial.Name, next, serial.ID, serial.RowVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update serial: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		exists, err := s.ExistsByID(ctx, serial.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("serial %d: %w", serial.ID, shared.ErrConflict)
		}
		return nil, fmt.Errorf("serial %d: %w", serial.ID, shared.ErrNotFound)
	}

	updated := *serial
	updated.RowVersion = next
	return &updated, nil
}

// Remove hard-deletes a serial by id. The service layer checks dependents
// first; the foreign key backstop maps to [shared.ErrHasDependents].
func (s *SerialStore) Remove(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM serials WHERE id = ?", id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("serial %d: %w", id, shared.ErrHasDependents)
		}
		return fmt.Errorf("failed to delete serial: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("serial %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// DependentCounts returns how many packages and tickets reference the serial.
func (s *SerialStore) DependentCounts(ctx context.Context, id int) (packages, tickets int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM packages WHERE serial_id = ?),
			(SELECT COUNT(*) FROM tickets WHERE serial_id = ?)`,
		id, id).Scan(&packages, &tickets)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count serial dependents: %w", err)
	}
	return packages, tickets, nil
}
