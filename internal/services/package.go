package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"tixpack/internal/models"
	"tixpack/internal/repositories"
	"tixpack/internal/shared"
)

// PackageService is the allocation engine: it enforces numbering, state
// transitions and special/default conversion rules for ticket packages.
//
// All operations take and return detached snapshots. Writes go through the
// store's conditional update, so a caller holding a stale row version gets
// [shared.ErrConflict] and must re-read before retrying.
type PackageService struct {
	packages *repositories.PackageStore
	tickets  *repositories.TicketStore
	colors   *ColorService
	serials  *SerialService
	logger   *log.Logger
}

// NewPackageService creates a new PackageService
func NewPackageService(packages *repositories.PackageStore, tickets *repositories.TicketStore,
	colors *ColorService, serials *SerialService, logger *log.Logger) *PackageService {
	return &PackageService{
		packages: packages,
		tickets:  tickets,
		colors:   colors,
		serials:  serials,
		logger:   logger,
	}
}

// TotalCount returns the number of packages.
func (s *PackageService) TotalCount(ctx context.Context) (int, error) {
	return s.packages.Count(ctx)
}

// OpenedCount returns the number of opened packages.
func (s *PackageService) OpenedCount(ctx context.Context) (int, error) {
	return s.packages.CountOpened(ctx)
}

// SpecialCount returns the number of special packages.
func (s *PackageService) SpecialCount(ctx context.Context) (int, error) {
	return s.packages.CountSpecial(ctx)
}

// GetPackages retrieves listing rows matching the query.
func (s *PackageService) GetPackages(ctx context.Context, q models.PackageQuery) ([]models.PackageInfo, error) {
	return s.packages.List(ctx, q)
}

// GetPackagesByColor retrieves listing rows for one color.
func (s *PackageService) GetPackagesByColor(ctx context.Context, colorID int) ([]models.PackageInfo, error) {
	return s.packages.List(ctx, models.PackageQuery{ColorID: colorID})
}

// GetPackagesBySerial retrieves listing rows for one serial.
func (s *PackageService) GetPackagesBySerial(ctx context.Context, serialID int) ([]models.PackageInfo, error) {
	return s.packages.List(ctx, models.PackageQuery{SerialID: serialID})
}

// FindByName retrieves listing rows whose stored name contains the fragment,
// case-insensitively.
func (s *PackageService) FindByName(ctx context.Context, name string) ([]models.PackageInfo, error) {
	return s.packages.List(ctx, models.PackageQuery{Name: name})
}

// GetPackage retrieves a package snapshot, or nil when absent.
func (s *PackageService) GetPackage(ctx context.Context, id int) (*models.Package, error) {
	pkg, err := s.packages.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return pkg, err
}

// GetPackageTickets retrieves the tickets allocated to a package.
func (s *PackageService) GetPackageTickets(ctx context.Context, id int, orderByNumber bool) ([]*models.Ticket, error) {
	return s.tickets.GetByPackage(ctx, id, orderByNumber)
}

// CreateDefault validates and creates a default package identified by color,
// serial and starting number.
func (s *PackageService) CreateDefault(ctx context.Context, in models.PackageCreate) (*models.Package, error) {
	errs, err := s.ValidateCreateDefault(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	colorID, serialID := in.ColorID, in.SerialID
	created, err := s.packages.Create(ctx, &models.Package{
		ColorID:     &colorID,
		SerialID:    &serialID,
		FirstNumber: in.FirstNumber,
		Nominal:     in.Nominal,
		Note:        in.Note,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("package created", "id", created.ID, "color", colorID, "serial", serialID)
	return created, nil
}

// CreateSpecial validates and creates a special package identified by a
// unique free-text name. Color and serial are optional.
func (s *PackageService) CreateSpecial(ctx context.Context, in models.PackageSpecialCreate) (*models.Package, error) {
	errs, err := s.ValidateCreateSpecial(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	name := strings.TrimSpace(in.Name)
	created, err := s.packages.Create(ctx, &models.Package{
		Name:      &name,
		ColorID:   in.ColorID,
		SerialID:  in.SerialID,
		Nominal:   in.Nominal,
		Note:      in.Note,
		IsSpecial: true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("special package created", "id", created.ID, "name", name)
	return created, nil
}

// GetPackageEdit retrieves the edit-view projection of a default package.
// Returns nil when absent and [shared.ErrWrongState] for a special package.
func (s *PackageService) GetPackageEdit(ctx context.Context, id int) (*models.PackageEdit, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil || pkg == nil {
		return nil, err
	}
	if pkg.IsSpecial {
		return nil, fmt.Errorf("package %d is special: %w", id, shared.ErrWrongState)
	}

	edit := models.PackageEdit{
		ID:          pkg.ID,
		FirstNumber: pkg.FirstNumber,
		Nominal:     pkg.Nominal,
		Note:        pkg.Note,
		RowVersion:  pkg.RowVersion,
	}
	if pkg.ColorID != nil {
		edit.ColorID = *pkg.ColorID
	}
	if pkg.SerialID != nil {
		edit.SerialID = *pkg.SerialID
	}
	return &edit, nil
}

// GetSpecialPackageEdit retrieves the edit-view projection of a special
// package. Returns nil when absent and [shared.ErrWrongState] for a default
// package.
func (s *PackageService) GetSpecialPackageEdit(ctx context.Context, id int) (*models.PackageSpecialEdit, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil || pkg == nil {
		return nil, err
	}
	if !pkg.IsSpecial {
		return nil, fmt.Errorf("package %d is not special: %w", id, shared.ErrWrongState)
	}

	edit := models.PackageSpecialEdit{
		ID:         pkg.ID,
		ColorID:    pkg.ColorID,
		SerialID:   pkg.SerialID,
		Nominal:    pkg.Nominal,
		Note:       pkg.Note,
		RowVersion: pkg.RowVersion,
	}
	if pkg.Name != nil {
		edit.Name = *pkg.Name
	}
	return &edit, nil
}

// EditDefault applies an edit to a currently-default package using the
// caller's row version. A special package fails with [shared.ErrWrongState];
// a stale row version fails with [shared.ErrConflict].
func (s *PackageService) EditDefault(ctx context.Context, in models.PackageEdit) (*models.Package, error) {
	current, err := s.packages.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if current.IsSpecial {
		return nil, fmt.Errorf("package %d is special: %w", in.ID, shared.ErrWrongState)
	}

	errs, err := s.ValidateEditDefault(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	colorID, serialID := in.ColorID, in.SerialID
	next := *current
	next.ColorID = &colorID
	next.SerialID = &serialID
	next.FirstNumber = in.FirstNumber
	next.Nominal = in.Nominal
	next.Note = in.Note
	next.RowVersion = in.RowVersion

	updated, err := s.packages.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("package edited", "id", updated.ID)
	return updated, nil
}

// EditSpecial applies an edit to a currently-special package using the
// caller's row version. Name uniqueness excludes the package's own row.
func (s *PackageService) EditSpecial(ctx context.Context, in models.PackageSpecialEdit) (*models.Package, error) {
	current, err := s.packages.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !current.IsSpecial {
		return nil, fmt.Errorf("package %d is not special: %w", in.ID, shared.ErrWrongState)
	}

	errs, err := s.ValidateEditSpecial(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	name := strings.TrimSpace(in.Name)
	next := *current
	next.Name = &name
	next.ColorID = in.ColorID
	next.SerialID = in.SerialID
	next.Nominal = in.Nominal
	next.Note = in.Note
	next.RowVersion = in.RowVersion

	updated, err := s.packages.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("special package edited", "id", updated.ID, "name", name)
	return updated, nil
}

// Open marks the package opened so tickets may move into or out of it.
// The caller is responsible for rejecting a call on an already-open package;
// this layer re-persists the flag unconditionally.
func (s *PackageService) Open(ctx context.Context, id int) (*models.Package, error) {
	return s.setOpened(ctx, id, true)
}

// Close marks the package closed. Same caller contract as [PackageService.Open].
func (s *PackageService) Close(ctx context.Context, id int) (*models.Package, error) {
	return s.setOpened(ctx, id, false)
}

func (s *PackageService) setOpened(ctx context.Context, id int, opened bool) (*models.Package, error) {
	current, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	next.IsOpened = opened

	updated, err := s.packages.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("package state changed", "id", id, "opened", opened)
	return updated, nil
}

// MakeSpecial converts a default package to special under the given name.
// Color and serial are left as-is; they become vestigial but are not cleared.
func (s *PackageService) MakeSpecial(ctx context.Context, id int, name string) (*models.Package, error) {
	current, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsSpecial {
		return nil, fmt.Errorf("package %d is already special: %w", id, shared.ErrWrongState)
	}

	errs, err := s.ValidateMakeSpecial(ctx, id, name)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	trimmed := strings.TrimSpace(name)
	next := *current
	next.IsSpecial = true
	next.Name = &trimmed

	updated, err := s.packages.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("package made special", "id", id, "name", trimmed)
	return updated, nil
}

// MakeDefault converts a special package back to default, clearing its name
// and setting the new color and serial. Both references are validated to
// exist, matching the create/edit paths. FirstNumber is replaced only when
// provided.
func (s *PackageService) MakeDefault(ctx context.Context, id, colorID, serialID int, firstNumber *int) (*models.Package, error) {
	current, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsSpecial {
		return nil, fmt.Errorf("package %d is already default: %w", id, shared.ErrWrongState)
	}

	errs, err := s.ValidateMakeDefault(ctx, colorID, serialID)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	next := *current
	next.IsSpecial = false
	next.Name = nil
	next.ColorID = &colorID
	next.SerialID = &serialID
	if firstNumber != nil {
		next.FirstNumber = firstNumber
	}

	updated, err := s.packages.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logger.Info("package made default", "id", id, "color", colorID, "serial", serialID)
	return updated, nil
}

// Remove hard-deletes a package. A package with any allocated tickets is
// rejected with a validation error and remains stored.
func (s *PackageService) Remove(ctx context.Context, id int) error {
	count, err := s.tickets.CountByPackage(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ValidationErrors{
			fmt.Sprintf("Cannot remove package %d: %d tickets belong to it.", id, count),
		}
	}

	if err := s.packages.Remove(ctx, id); err != nil {
		return err
	}

	s.logger.Info("package removed", "id", id)
	return nil
}

// ExistsByID reports whether the package exists.
func (s *PackageService) ExistsByID(ctx context.Context, id int) (bool, error) {
	return s.packages.ExistsByID(ctx, id)
}

// ExistsByName reports whether any package carries the name, case-insensitively.
func (s *PackageService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.packages.ExistsByName(ctx, name)
}

// IsNameFree reports whether the name is unused by any package other than id.
func (s *PackageService) IsNameFree(ctx context.Context, id int, name string) (bool, error) {
	return s.packages.IsNameFree(ctx, id, name)
}

// PackageLabel resolves the display name of a package snapshot.
func (s *PackageService) PackageLabel(ctx context.Context, pkg *models.Package) (string, error) {
	var colorName, serialName string

	if pkg.ColorID != nil {
		color, err := s.colors.GetColor(ctx, *pkg.ColorID)
		if err != nil {
			return "", err
		}
		if color != nil {
			colorName = color.Name
		}
	}
	if pkg.SerialID != nil {
		serial, err := s.serials.GetSerial(ctx, *pkg.SerialID)
		if err != nil {
			return "", err
		}
		if serial != nil {
			serialName = serial.Name
		}
	}
	return pkg.Label(colorName, serialName), nil
}

// ValidateCreateDefault accumulates every rule the candidate violates:
// field constraints plus referential existence of color and serial.
func (s *PackageService) ValidateCreateDefault(ctx context.Context, in models.PackageCreate) (ValidationErrors, error) {
	var errs ValidationErrors

	errs = append(errs, validatePackageFields(in.FirstNumber, in.Nominal)...)

	refErrs, err := s.validateRefs(ctx, &in.ColorID, &in.SerialID)
	if err != nil {
		return nil, err
	}
	errs = append(errs, refErrs...)

	return errs, nil
}

// ValidateCreateSpecial accumulates every rule the candidate violates:
// name constraints, package-wide name uniqueness, and existence of the
// optional color and serial references.
func (s *PackageService) ValidateCreateSpecial(ctx context.Context, in models.PackageSpecialCreate) (ValidationErrors, error) {
	errs := validateName("Package", in.Name, NameMinLen)
	errs = append(errs, validatePackageFields(nil, in.Nominal)...)

	name := strings.TrimSpace(in.Name)
	if name != "" {
		exists, err := s.packages.ExistsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if exists {
			errs = append(errs, fmt.Sprintf("Package %q already exists.", name))
		}
	}

	refErrs, err := s.validateRefs(ctx, in.ColorID, in.SerialID)
	if err != nil {
		return nil, err
	}
	errs = append(errs, refErrs...)

	return errs, nil
}

// ValidateEditDefault accumulates every rule the candidate edit violates.
func (s *PackageService) ValidateEditDefault(ctx context.Context, in models.PackageEdit) (ValidationErrors, error) {
	var errs ValidationErrors

	errs = append(errs, validatePackageFields(in.FirstNumber, in.Nominal)...)

	refErrs, err := s.validateRefs(ctx, &in.ColorID, &in.SerialID)
	if err != nil {
		return nil, err
	}
	errs = append(errs, refErrs...)

	return errs, nil
}

// ValidateEditSpecial accumulates every rule the candidate edit violates.
// The name-uniqueness check excludes the package's own id.
func (s *PackageService) ValidateEditSpecial(ctx context.Context, in models.PackageSpecialEdit) (ValidationErrors, error) {
	errs := validateName("Package", in.Name, NameMinLen)
	errs = append(errs, validatePackageFields(nil, in.Nominal)...)

	name := strings.TrimSpace(in.Name)
	if name != "" {
		free, err := s.packages.IsNameFree(ctx, in.ID, name)
		if err != nil {
			return nil, err
		}
		if !free {
			errs = append(errs, fmt.Sprintf("Package %q already exists.", name))
		}
	}

	refErrs, err := s.validateRefs(ctx, in.ColorID, in.SerialID)
	if err != nil {
		return nil, err
	}
	errs = append(errs, refErrs...)

	return errs, nil
}

// ValidateMakeSpecial accumulates every rule the conversion violates.
func (s *PackageService) ValidateMakeSpecial(ctx context.Context, id int, name string) (ValidationErrors, error) {
	errs := validateName("Package", name, NameMinLen)

	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		free, err := s.packages.IsNameFree(ctx, id, trimmed)
		if err != nil {
			return nil, err
		}
		if !free {
			errs = append(errs, fmt.Sprintf("Package %q already exists.", trimmed))
		}
	}
	return errs, nil
}

// ValidateMakeDefault checks that the new color and serial references exist.
func (s *PackageService) ValidateMakeDefault(ctx context.Context, colorID, serialID int) (ValidationErrors, error) {
	return s.validateRefs(ctx, &colorID, &serialID)
}

// validateRefs checks referential existence of optional color and serial ids.
func (s *PackageService) validateRefs(ctx context.Context, colorID, serialID *int) (ValidationErrors, error) {
	var errs ValidationErrors

	if colorID != nil {
		exists, err := s.colors.ExistsByID(ctx, *colorID)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs = append(errs, fmt.Sprintf("Color %d does not exist.", *colorID))
		}
	}
	if serialID != nil {
		exists, err := s.serials.ExistsByID(ctx, *serialID)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs = append(errs, fmt.Sprintf("Serial %d does not exist.", *serialID))
		}
	}
	return errs, nil
}

// validatePackageFields checks numeric field constraints shared by package
// create and edit paths.
func validatePackageFields(firstNumber *int, nominal float64) ValidationErrors {
	var errs ValidationErrors
	if firstNumber != nil && *firstNumber < 0 {
		errs = append(errs, "First ticket number cannot be negative.")
	}
	if nominal < 0 {
		errs = append(errs, "Nominal cannot be negative.")
	}
	return errs
}
