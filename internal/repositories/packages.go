package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// PackageStore implements [models.Store] for ticket packages.
type PackageStore struct {
	db *sql.DB
}

var _ models.Store[*models.Package] = (*PackageStore)(nil)

// NewPackageStore creates a new PackageStore with the given database connection
func NewPackageStore(db *sql.DB) *PackageStore {
	return &PackageStore{db: db}
}

const packageColumns = "id, name, color_id, serial_id, first_number, nominal, note, is_special, is_opened, row_version"

// Count returns the number of packages.
func (s *PackageStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count packages: %w", err)
	}
	return n, nil
}

// CountOpened returns the number of opened packages.
func (s *PackageStore) CountOpened(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages WHERE is_opened = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count opened packages: %w", err)
	}
	return n, nil
}

// CountSpecial returns the number of special packages.
func (s *PackageStore) CountSpecial(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages WHERE is_special = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count special packages: %w", err)
	}
	return n, nil
}

// ExistsByID reports whether a package with the id exists.
func (s *PackageStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM packages WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check package existence: %w", err)
	}
	return exists, nil
}

// ExistsByName reports whether any package carries the name, case-insensitively.
// Default packages store no name, so in practice this checks special packages.
func (s *PackageStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM packages WHERE name = ? COLLATE NOCASE)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check package name: %w", err)
	}
	return exists, nil
}

// IsNameFree reports whether the name is unused by any package other than id.
func (s *PackageStore) IsNameFree(ctx context.Context, id int, name string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM packages WHERE name = ? COLLATE NOCASE AND id != ?)", name, id).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check package name: %w", err)
	}
	return !taken, nil
}

// GetAll retrieves all packages in insertion order.
func (s *PackageStore) GetAll(ctx context.Context) ([]*models.Package, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM packages ORDER BY id", packageColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	var packages []*models.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return packages, nil
}

// List retrieves package listing rows matching the query, joined with their
// catalog names and ticket counts.
func (s *PackageStore) List(ctx context.Context, q models.PackageQuery) ([]models.PackageInfo, error) {
	query := `
		SELECT p.id, p.name, p.color_id, p.serial_id, p.first_number, p.nominal, p.note,
			p.is_special, p.is_opened, p.row_version,
			COALESCE(c.name, ''), COALESCE(sr.name, ''),
			(SELECT COUNT(*) FROM tickets t WHERE t.package_id = p.id)
		FROM packages p
		LEFT JOIN colors c ON c.id = p.color_id
		LEFT JOIN serials sr ON sr.id = p.serial_id
	`

	var conds []string
	var args []any

	switch q.Filter {
	case models.FilterOpened:
		conds = append(conds, "p.is_opened = 1")
	case models.FilterClosed:
		conds = append(conds, "p.is_opened = 0")
	case models.FilterSpecial:
		conds = append(conds, "p.is_special = 1")
	case models.FilterDefault:
		conds = append(conds, "p.is_special = 0")
	}

	if q.ColorID != 0 {
		conds = append(conds, "p.color_id = ?")
		args = append(args, q.ColorID)
	}
	if q.SerialID != 0 {
		conds = append(conds, "p.serial_id = ?")
		args = append(args, q.SerialID)
	}
	if q.Name != "" {
		conds = append(conds, "p.name LIKE '%' || ? || '%' COLLATE NOCASE")
		args = append(args, q.Name)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	if q.SortByName {
		query += " ORDER BY COALESCE(p.name, c.name || ' ' || sr.name) COLLATE NOCASE, p.id"
	} else {
		query += " ORDER BY p.id"
	}

	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	defer rows.Close()

	var infos []models.PackageInfo
	for rows.Next() {
		var (
			info        models.PackageInfo
			name        sql.NullString
			colorID     sql.NullInt64
			serialID    sql.NullInt64
			firstNumber sql.NullInt64
		)
		err := rows.Scan(&info.ID, &name, &colorID, &serialID, &firstNumber, &info.Nominal, &info.Note,
			&info.IsSpecial, &info.IsOpened, &info.RowVersion,
			&info.ColorName, &info.SerialName, &info.TicketsCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		info.Name = nullStr(name)
		info.ColorID = nullInt(colorID)
		info.SerialID = nullInt(serialID)
		info.FirstNumber = nullInt(firstNumber)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return infos, nil
}

// GetByID retrieves a package by id.
func (s *PackageStore) GetByID(ctx context.Context, id int) (*models.Package, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM packages WHERE id = ?", packageColumns), id)

	pkg, err := scanPackage(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("package %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// Create inserts a new package and returns its snapshot with the issued id
// and row version.
func (s *PackageStore) Create(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	version := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO packages (name, color_id, serial_id, first_number, nominal, note, is_special, is_opened, row_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		optStr(pkg.Name), optInt(pkg.ColorID), optInt(pkg.SerialID), optInt(pkg.FirstNumber),
		pkg.Nominal, pkg.Note, pkg.IsSpecial, pkg.IsOpened, version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert package: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	created := *pkg
	created.ID = int(id)
	created.RowVersion = version
	return &created, nil
}

// Update writes the package conditionally on its row version, issuing a
// fresh version on success. A stale version fails with [shared.ErrConflict]
// and leaves stored state untouched.
func (s *PackageStore) Update(ctx context.Context, pkg *models.Package) (*models.Package, error) {
	next := shared.NewRowVersion()

	res, err := s.db.ExecContext(ctx,
		`UPDATE packages
		SET name = ?, color_id = ?, serial_id = ?, first_number = ?, nominal = ?, note = ?,
			is_special = ?, is_opened = ?, row_version = ?
		WHERE id = ? AND row_version = ?`,
		optStr(pkg.Name), optInt(pkg.ColorID), optInt(pkg.SerialID), optInt(pkg.FirstNumber),
		pkg.Nominal, pkg.Note, pkg.IsSpecial, pkg.IsOpened, next,
		pkg.ID, pkg.RowVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		exists, err := s.ExistsByID(ctx, pkg.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("package %d: %w", pkg.ID, shared.ErrConflict)
		}
		return nil, fmt.Errorf("package %d: %w", pkg.ID, shared.ErrNotFound)
	}

	updated := *pkg
	updated.RowVersion = next
	return &updated, nil
}

// Remove hard-deletes a package by id. Dependent-ticket guards live in the
// service layer; the foreign key backstop maps to [shared.ErrHasDependents].
func (s *PackageStore) Remove(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM packages WHERE id = ?", id)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("package %d: %w", id, shared.ErrHasDependents)
		}
		return fmt.Errorf("failed to delete package: %w", err)
	}

	rows, err := affected(res)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("package %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for the shared scan path.
type scanner interface {
	Scan(dest ...any) error
}

// scanPackage scans one package row into a detached snapshot.
func scanPackage(row scanner) (*models.Package, error) {
	var (
		pkg         models.Package
		name        sql.NullString
		colorID     sql.NullInt64
		serialID    sql.NullInt64
		firstNumber sql.NullInt64
	)

	err := row.Scan(&pkg.ID, &name, &colorID, &serialID, &firstNumber,
		&pkg.Nominal, &pkg.Note, &pkg.IsSpecial, &pkg.IsOpened, &pkg.RowVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan package: %w", err)
	}

	pkg.Name = nullStr(name)
	pkg.ColorID = nullInt(colorID)
	pkg.SerialID = nullInt(serialID)
	pkg.FirstNumber = nullInt(firstNumber)
	return &pkg, nil
}

// optInt converts an optional int to a driver-friendly value.
func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// optStr converts an optional string to a driver-friendly value.
func optStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
