// package models defines the data model for the ticket package inventory.
package models

import (
	"context"
	"fmt"
)

// Entity is the base interface for all persisted rows.
//
// Every mutable entity carries an opaque row version issued by the store on
// each successful write. A write presenting a stale version is rejected.
type Entity interface {
	EntityID() int   // EntityID returns the row's integer primary key
	Version() string // Version returns the concurrency token read with the row
}

// Store defines durable CRUD with optimistic-concurrency update semantics.
//
// Implementations return detached snapshots, never live rows. Update must
// atomically verify the snapshot's version against the stored one, write the
// new state and issue a fresh version, failing when another writer
// intervened since the read.
type Store[T Entity] interface {
	Count(ctx context.Context) (int, error)
	ExistsByID(ctx context.Context, id int) (bool, error)
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Remove(ctx context.Context, id int) error
}

// Color is a reference catalog entry identifying a ticket's print color.
type Color struct {
	ID         int
	Name       string
	RowVersion string
}

func (c *Color) EntityID() int   { return c.ID }
func (c *Color) Version() string { return c.RowVersion }

// ColorInfo is a Color listing row with dependent counts attached.
type ColorInfo struct {
	Color
	PackagesCount int
	TicketsCount  int
}

// Serial is a reference catalog entry identifying one physical print run.
type Serial struct {
	ID         int
	Name       string
	RowVersion string
}

func (s *Serial) EntityID() int   { return s.ID }
func (s *Serial) Version() string { return s.RowVersion }

// SerialInfo is a Serial listing row with dependent counts attached.
type SerialInfo struct {
	Serial
	PackagesCount int
	TicketsCount  int
}

// Package is a contiguous range of sequentially numbered tickets.
//
// A default package is identified by color, serial and starting number; a
// special package by a unique free-text name. Name is nil for default
// packages (the display label is synthesized, never stored).
type Package struct {
	ID          int
	Name        *string
	ColorID     *int
	SerialID    *int
	FirstNumber *int
	Nominal     float64
	Note        string
	IsSpecial   bool
	IsOpened    bool
	RowVersion  string
}

func (p *Package) EntityID() int   { return p.ID }
func (p *Package) Version() string { return p.RowVersion }

// Label synthesizes the display name for a package given the names of its
// color and serial. Special packages display their stored name as-is.
func (p *Package) Label(colorName, serialName string) string {
	if p.IsSpecial && p.Name != nil {
		return *p.Name
	}
	if p.FirstNumber != nil {
		return fmt.Sprintf("%s %s-%06d", colorName, serialName, *p.FirstNumber)
	}
	return fmt.Sprintf("%s %s", colorName, serialName)
}

// PackageInfo is a Package listing row joined with its catalog names and
// ticket count for display.
type PackageInfo struct {
	Package
	ColorName    string
	SerialName   string
	TicketsCount int
}

// Label returns the display name of the listed package.
func (p *PackageInfo) Label() string {
	return p.Package.Label(p.ColorName, p.SerialName)
}

// Ticket is a single numbered ticket. PackageID is nil while the ticket is
// parked as unallocated; it keeps its number, color and serial either way.
type Ticket struct {
	ID         int
	Number     int
	ColorID    int
	SerialID   int
	PackageID  *int
	Note       string
	RowVersion string
}

func (t *Ticket) EntityID() int   { return t.ID }
func (t *Ticket) Version() string { return t.RowVersion }

// PackageFilter selects a status tab for package listings.
type PackageFilter int

const (
	FilterAll PackageFilter = iota
	FilterOpened
	FilterClosed
	FilterSpecial
	FilterDefault
)

func (f PackageFilter) String() string {
	switch f {
	case FilterOpened:
		return "opened"
	case FilterClosed:
		return "closed"
	case FilterSpecial:
		return "special"
	case FilterDefault:
		return "default"
	default:
		return "all"
	}
}

// Next cycles to the following status tab, wrapping back to all.
func (f PackageFilter) Next() PackageFilter {
	if f == FilterDefault {
		return FilterAll
	}
	return f + 1
}

// ParsePackageFilter maps a status tab name to its filter, defaulting to all.
func ParsePackageFilter(s string) PackageFilter {
	switch s {
	case "opened":
		return FilterOpened
	case "closed":
		return FilterClosed
	case "special":
		return FilterSpecial
	case "default":
		return FilterDefault
	default:
		return FilterAll
	}
}

// PackageQuery narrows and pages a package listing. Zero values mean no
// constraint; SortByName switches from insertion order to a stable
// case-insensitive name sort.
type PackageQuery struct {
	Filter     PackageFilter
	ColorID    int
	SerialID   int
	Name       string
	Limit      int
	Offset     int
	SortByName bool
}

// PackageCreate is the input for creating a default package.
type PackageCreate struct {
	ColorID     int
	SerialID    int
	FirstNumber *int
	Nominal     float64
	Note        string
}

// PackageSpecialCreate is the input for creating a special package.
type PackageSpecialCreate struct {
	Name     string
	ColorID  *int
	SerialID *int
	Nominal  float64
	Note     string
}

// PackageEdit is the edit-view projection of a default package.
type PackageEdit struct {
	ID          int
	ColorID     int
	SerialID    int
	FirstNumber *int
	Nominal     float64
	Note        string
	RowVersion  string
}

// PackageSpecialEdit is the edit-view projection of a special package.
type PackageSpecialEdit struct {
	ID         int
	Name       string
	ColorID    *int
	SerialID   *int
	Nominal    float64
	Note       string
	RowVersion string
}

// CatalogEdit is the edit-view projection shared by colors and serials.
type CatalogEdit struct {
	ID         int
	Name       string
	RowVersion string
}
