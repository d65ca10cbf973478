package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"tixpack/internal/cache"
	"tixpack/internal/models"
	"tixpack/internal/repositories"
	"tixpack/internal/shared"
)

// SerialService manages the serial reference catalog. Every successful
// mutation invalidates the serial select-list cache entry.
type SerialService struct {
	store  *repositories.SerialStore
	lists  *cache.Cache
	logger *log.Logger
}

// NewSerialService creates a new SerialService
func NewSerialService(store *repositories.SerialStore, lists *cache.Cache, logger *log.Logger) *SerialService {
	return &SerialService{store: store, lists: lists, logger: logger}
}

// GetSerials retrieves all serials with dependent counts, in insertion order.
func (s *SerialService) GetSerials(ctx context.Context) ([]models.SerialInfo, error) {
	return s.store.GetAllWithCounts(ctx)
}

// GetSerial retrieves a serial snapshot, or nil when absent.
func (s *SerialService) GetSerial(ctx context.Context, id int) (*models.Serial, error) {
	serial, err := s.store.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return serial, err
}

// GetSerialEdit retrieves the edit-view projection of a serial, or nil when absent.
func (s *SerialService) GetSerialEdit(ctx context.Context, id int) (*models.CatalogEdit, error) {
	serial, err := s.GetSerial(ctx, id)
	if err != nil || serial == nil {
		return nil, err
	}
	return &models.CatalogEdit{ID: serial.ID, Name: serial.Name, RowVersion: serial.RowVersion}, nil
}

// Create validates and inserts a new serial, invalidating the select list.
func (s *SerialService) Create(ctx context.Context, name string) (*models.Serial, error) {
	errs, err := s.ValidateCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	created, err := s.store.Create(ctx, &models.Serial{Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, err
	}

	s.lists.DeleteItem(cache.SerialSelectList)
	s.logger.Info("serial created", "id", created.ID, "name", created.Name)
	return created, nil
}

// Edit validates and applies a serial rename using the caller's row version,
// invalidating the select list on success.
func (s *SerialService) Edit(ctx context.Context, edit models.CatalogEdit) (*models.Serial, error) {
	errs, err := s.ValidateEdit(ctx, edit)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	updated, err := s.store.Update(ctx, &models.Serial{
		ID:         edit.ID,
		Name:       strings.TrimSpace(edit.Name),
		RowVersion: edit.RowVersion,
	})
	if err != nil {
		return nil, err
	}

	s.lists.DeleteItem(cache.SerialSelectList)
	s.logger.Info("serial edited", "id", updated.ID, "name", updated.Name)
	return updated, nil
}

// Remove deletes a serial. A serial referenced by any package or ticket is
// rejected with a validation error before the delete is attempted.
func (s *SerialService) Remove(ctx context.Context, id int) error {
	packages, tickets, err := s.store.DependentCounts(ctx, id)
	if err != nil {
		return err
	}
	if packages > 0 || tickets > 0 {
		return ValidationErrors{
			fmt.Sprintf("Cannot remove serial %d: %d packages and %d tickets reference it.", id, packages, tickets),
		}
	}

	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	s.lists.DeleteItem(cache.SerialSelectList)
	s.logger.Info("serial removed", "id", id)
	return nil
}

// ExistsByID reports whether the serial exists.
func (s *SerialService) ExistsByID(ctx context.Context, id int) (bool, error) {
	return s.store.ExistsByID(ctx, id)
}

// ExistsByName reports whether a serial with the name exists, case-insensitively.
func (s *SerialService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.store.ExistsByName(ctx, name)
}

// IsNameFree reports whether the name is unused by any serial other than id.
func (s *SerialService) IsNameFree(ctx context.Context, id int, name string) (bool, error) {
	return s.store.IsNameFree(ctx, id, name)
}

// ValidateCreate accumulates every rule the candidate name violates.
func (s *SerialService) ValidateCreate(ctx context.Context, name string) (ValidationErrors, error) {
	errs := validateName("Serial", name, SerialNameMinLen)

	exists, err := s.store.ExistsByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if exists {
		errs = append(errs, fmt.Sprintf("Serial %q already exists.", strings.TrimSpace(name)))
	}
	return errs, nil
}

// ValidateEdit accumulates every rule the candidate rename violates,
// excluding the serial's own row from the uniqueness check.
func (s *SerialService) ValidateEdit(ctx context.Context, edit models.CatalogEdit) (ValidationErrors, error) {
	errs := validateName("Serial", edit.Name, SerialNameMinLen)

	free, err := s.store.IsNameFree(ctx, edit.ID, strings.TrimSpace(edit.Name))
	if err != nil {
		return nil, err
	}
	if !free {
		errs = append(errs, fmt.Sprintf("Serial %q already exists.", strings.TrimSpace(edit.Name)))
	}
	return errs, nil
}

// SelectList returns the name-sorted serial listing used to populate
// selection inputs, memoized under [cache.SerialSelectList].
func (s *SerialService) SelectList(ctx context.Context) ([]*models.Serial, error) {
	if cached, ok := cache.ItemAs[[]*models.Serial](s.lists, cache.SerialSelectList); ok {
		return cached, nil
	}

	serials, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(serials, func(i, j int) bool {
		return strings.ToLower(serials[i].Name) < strings.ToLower(serials[j].Name)
	})

	s.lists.AddOrReplaceItem(cache.SerialSelectList, serials)
	return serials, nil
}
