// package services implements the business rules over the stores: the
// package allocation engine, the catalog services and ticket reallocation.
//
// Validation is side-effect free: each validator reads current store state
// and accumulates every violated rule into one [ValidationErrors] value so
// callers can display all errors at once. No mutation runs until its
// validator returns empty.
package services

import (
	"fmt"
	"strings"
)

// Name length constraints for catalogs and special package names. Serial
// names are short print-run codes, so they only carry the upper bound.
const (
	NameMinLen       = 3
	SerialNameMinLen = 1
	NameMaxLen       = 32
)

// ValidationErrors is an ordered, accumulating list of human-readable
// business-rule violations. It never represents infrastructure failure;
// store errors travel separately.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// validateName checks the length constraints for a required name, labeling
// violations with the entity kind.
func validateName(kind, name string, minLen int) ValidationErrors {
	var errs ValidationErrors
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		errs = append(errs, fmt.Sprintf("%s name is required.", kind))
		return errs
	}
	if len(trimmed) < minLen {
		errs = append(errs, fmt.Sprintf("%s name must be at least %d characters.", kind, minLen))
	}
	if len(trimmed) > NameMaxLen {
		errs = append(errs, fmt.Sprintf("%s name must be at most %d characters.", kind, NameMaxLen))
	}
	return errs
}
