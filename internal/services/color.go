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

// ColorService manages the color reference catalog. Every successful
// mutation invalidates the color select-list cache entry.
type ColorService struct {
	store  *repositories.ColorStore
	lists  *cache.Cache
	logger *log.Logger
}

// NewColorService creates a new ColorService
func NewColorService(store *repositories.ColorStore, lists *cache.Cache, logger *log.Logger) *ColorService {
	return &ColorService{store: store, lists: lists, logger: logger}
}

// GetColors retrieves all colors with dependent counts, in insertion order.
func (s *ColorService) GetColors(ctx context.Context) ([]models.ColorInfo, error) {
	return s.store.GetAllWithCounts(ctx)
}

// GetColor retrieves a color snapshot, or nil when absent.
func (s *ColorService) GetColor(ctx context.Context, id int) (*models.Color, error) {
	color, err := s.store.GetByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return color, err
}

// GetColorEdit retrieves the edit-view projection of a color, or nil when absent.
func (s *ColorService) GetColorEdit(ctx context.Context, id int) (*models.CatalogEdit, error) {
	color, err := s.GetColor(ctx, id)
	if err != nil || color == nil {
		return nil, err
	}
	return &models.CatalogEdit{ID: color.ID, Name: color.Name, RowVersion: color.RowVersion}, nil
}

// Create validates and inserts a new color, invalidating the select list.
func (s *ColorService) Create(ctx context.Context, name string) (*models.Color, error) {
	errs, err := s.ValidateCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	created, err := s.store.Create(ctx, &models.Color{Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, err
	}

	s.lists.DeleteItem(cache.ColorSelectList)
	s.logger.Info("color created", "id", created.ID, "name", created.Name)
	return created, nil
}

// Edit validates and applies a color rename using the caller's row version,
// invalidating the select list on success.
func (s *ColorService) Edit(ctx context.Context, edit models.CatalogEdit) (*models.Color, error) {
	errs, err := s.ValidateEdit(ctx, edit)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	updated, err := s.store.Update(ctx, &models.Color{
		ID:         edit.ID,
		Name:       strings.TrimSpace(edit.Name),
		RowVersion: edit.RowVersion,
	})
	if err != nil {
		return nil, err
	}

	s.lists.DeleteItem(cache.ColorSelectList)
	s.logger.Info("color edited", "id", updated.ID, "name", updated.Name)
	return updated, nil
}

// Remove deletes a color. A color referenced by any package or ticket is
// rejected with a validation error before the delete is attempted.
func (s *ColorService) Remove(ctx context.Context, id int) error {
	packages, tickets, err := s.store.DependentCounts(ctx, id)
	if err != nil {
		return err
	}
	if packages > 0 || tickets > 0 {
		return ValidationErrors{
			fmt.Sprintf("Cannot remove color %d: %d packages and %d tickets reference it.", id, packages, tickets),
		}
	}

	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	s.lists.DeleteItem(cache.ColorSelectList)
	s.logger.Info("color removed", "id", id)
	return nil
}

// ExistsByID reports whether the color exists.
func (s *ColorService) ExistsByID(ctx context.Context, id int) (bool, error) {
	return s.store.ExistsByID(ctx, id)
}

// ExistsByName reports whether a color with the name exists, case-insensitively.
func (s *ColorService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.store.ExistsByName(ctx, name)
}

// IsNameFree reports whether the name is unused by any color other than id.
func (s *ColorService) IsNameFree(ctx context.Context, id int, name string) (bool, error) {
	return s.store.IsNameFree(ctx, id, name)
}

// ValidateCreate accumulates every rule the candidate name violates.
func (s *ColorService) ValidateCreate(ctx context.Context, name string) (ValidationErrors, error) {
	errs := validateName("Color", name, NameMinLen)

	exists, err := s.store.ExistsByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if exists {
		errs = append(errs, fmt.Sprintf("Color %q already exists.", strings.TrimSpace(name)))
	}
	return errs, nil
}

// ValidateEdit accumulates every rule the candidate rename violates,
// excluding the color's own row from the uniqueness check.
func (s *ColorService) ValidateEdit(ctx context.Context, edit models.CatalogEdit) (ValidationErrors, error) {
	errs := validateName("Color", edit.Name, NameMinLen)

	free, err := s.store.IsNameFree(ctx, edit.ID, strings.TrimSpace(edit.Name))
	if err != nil {
		return nil, err
	}
	if !free {
		errs = append(errs, fmt.Sprintf("Color %q already exists.", strings.TrimSpace(edit.Name)))
	}
	return errs, nil
}

// SelectList returns the name-sorted color listing used to populate
// selection inputs, memoized under [cache.ColorSelectList].
func (s *ColorService) SelectList(ctx context.Context) ([]*models.Color, error) {
	if cached, ok := cache.ItemAs[[]*models.Color](s.lists, cache.ColorSelectList); ok {
		return cached, nil
	}

	colors, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(colors, func(i, j int) bool {
		return strings.ToLower(colors[i].Name) < strings.ToLower(colors[j].Name)
	})

	s.lists.AddOrReplaceItem(cache.ColorSelectList, colors)
	return colors, nil
}
