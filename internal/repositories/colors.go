package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// ColorStore implements [models.Store] for the color reference catalog.
type ColorStore struct {
	db *sql.DB
}

var _ models.Store[*models.Color] = (*ColorStore)(nil)

// NewColorStore creates a new ColorStore with the given database connection
func NewColorStore(db *sql.DB) *ColorStore {
	return &ColorStore{db: db}
}

// Count returns the number of colors.
func (s *ColorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM colors").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count colors: %w", err)
	}
	return n, nil
}

// ExistsByID reports whether a color with the id exists.
func (s *ColorStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM colors WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check color existence: %w", err)
	}
	return exists, nil
}

// ExistsByName reports whether a color with the name exists, case-insensitively.
func (s *ColorStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM colors WHERE name = ? COLLATE NOCASE)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check color name: %w", err)
	}
	return exists, nil
}

// IsNameFree reports whether the name is unused by any color other than id.
func (s *ColorStore) IsNameFree(ctx context.Context, id int, name string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM colors WHERE name = ? COLLATE NOCASE AND id != ?)", name, id).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check color name: %w", err)
	}
	return !taken, nil
}

// GetAll retrieves all colors in insertion order.
func (s *ColorStore) GetAll(ctx context.Context) ([]*models.Color, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, row_version FROM colors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query colors: %w", err)
	}
	defer rows.Close()

	var colors []*models.Color
	for rows.Next() {
		var c models.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.RowVersion); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		colors = append(colors, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return colors, nil
}

// GetAllWithCounts retrieves all colors with their dependent package and
// ticket counts, for catalog listings.
func (s *ColorStore) GetAllWithCounts(ctx context.Context) ([]models.ColorInfo, error) {
	query := `
		SELECT c.id, c.name, c.row_version,
			(SELECT COUNT(*) FROM packages p WHERE p.color_id = c.id),
			(SELECT COUNT(*) FROM tickets t WHERE t.color_id = c.id)
		FROM colors c
		ORDER BY c.id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query colors: %w", err)
	}
	defer rows.Close()

	var infos []models.ColorInfo
	for rows.Next() {
		var info models.ColorInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.RowVersion, &info.PackagesCount, &info.TicketsCount); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return infos, nil
}

// GetByID retrieves a color by id.
func (s *ColorStore) GetByID(ctx context.Context, id int) (*models.Color, error) {
	var c models.Color
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, row_version FROM colors WHERE id = ?", id).Scan(&c.ID, &c.Name, &c.RowVersion)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("color %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query color: %w", err)
	}
	return &c, nil
}

// Create inserts a new color and returns its snapshot with the issued id and
// row version.
func (s *ColorStore) Create(ctx context.Context, color *models.Color) (*models.Color, error) {
	version := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO colors (name, row_version) VALUES (?, ?)", color.Name, version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert color: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	created := *color
	created.ID = int(id)
	created.RowVersion = version
	return &created, nil
}

// Update writes the color conditionally on its row version, issuing a fresh
// version on success. A stale version fails with [shared.ErrConflict] and
// leaves stored state untouched.
func (s *ColorStore) Update(ctx context.Context, color *models.Color) (*models.Color, error) {
	next := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		"UPDATE colors SET name = ?, row_version = ? WHERE id = ? AND row_version = ?",
		color.Name, next, color.ID, color.RowVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update color: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		exists, err := s.ExistsByID(ctx, color.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("color %d: %w", color.ID, shared.ErrConflict)
		}
		return nil, fmt.Errorf("color %d: %w", color.ID, shared.ErrNotFound)
	}

	updated := *color
	updated.RowVersion = next
	return &updated, nil
}

// Remove hard-deletes a color by id. The service layer checks dependents
// first; the foreign key backstop maps to [shared.ErrHasDependents].
func (s *ColorStore) Remove(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM colors WHERE id = ?", id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("color %d: %w", id, shared.ErrHasDependents)
		}
		return fmt.Errorf("failed to delete color: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("color %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// DependentCounts returns how many packages and tickets reference the color.
func (s *ColorStore) DependentCounts(ctx context.Context, id int) (packages, tickets int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM packages WHERE color_id = ?),
			(SELECT COUNT(*) FROM tickets WHERE color_id = ?)`,
		id, id).Scan(&packages, &tickets)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count color dependents: %w", err)
	}
	return packages, tickets, nil
}
