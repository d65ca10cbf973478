package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"tixpack/internal/cache"
	"tixpack/internal/models"
	"tixpack/internal/repositories"
	"tixpack/internal/shared"
)

type testApp struct {
	db       *sql.DB
	colors   *ColorService
	serials  *SerialService
	packages *PackageService
	tickets  *TicketService
}

// newTestApp wires the full service graph against an in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// every :memory: connection is a distinct database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := shared.NewLogger(io.Discard)
	lists := cache.New()

	colorStore := repositories.NewColorStore(db)
	serialStore := repositories.NewSerialStore(db)
	packageStore := repositories.NewPackageStore(db)
	ticketStore := repositories.NewTicketStore(db)

	colors := NewColorService(colorStore, lists, logger)
	serials := NewSerialService(serialStore, lists, logger)
	packages := NewPackageService(packageStore, ticketStore, colors, serials, logger)
	tickets := NewTicketService(ticketStore, packageStore, logger)

	return &testApp{db: db, colors: colors, serials: serials, packages: packages, tickets: tickets}
}

// seedCatalogs creates one color and one serial for package identities.
func (a *testApp) seedCatalogs(t *testing.T) (int, int) {
	t.Helper()
	ctx := context.Background()

	color, err := a.colors.Create(ctx, "Red")
	if err != nil {
		t.Fatalf("failed to create color: %v", err)
	}
	serial, err := a.serials.Create(ctx, "AB")
	if err != nil {
		t.Fatalf("failed to create serial: %v", err)
	}
	return color.ID, serial.ID
}

func intPtr(n int) *int { return &n }

func TestPackageServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultSuccess", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:     colorID,
			SerialID:    serialID,
			FirstNumber: intPtr(100),
			Nominal:     25,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		if created.IsSpecial {
			t.Error("default package must not be special")
		}
		if created.Name != nil {
			t.Error("default package must have no stored name")
		}
		if created.RowVersion == "" {
			t.Error("created package must carry a row version")
		}

		label, err := a.packages.PackageLabel(ctx, created)
		if err != nil {
			t.Fatalf("failed to resolve label: %v", err)
		}
		if label != "Red AB-000100" {
			t.Errorf("expected synthesized label Red AB-000100, got %q", label)
		}
	})

	t.Run("DefaultUnknownCatalogs", func(t *testing.T) {
		a := newTestApp(t)

		_, err := a.packages.CreateDefault(ctx, models.PackageCreate{ColorID: 7, SerialID: 8})
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
		if len(verrs) != 2 {
			t.Errorf("expected 2 violations (color and serial), got %d: %v", len(verrs), verrs)
		}
	})

	t.Run("SpecialSuccess", func(t *testing.T) {
		a := newTestApp(t)

		created, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "PROMO-2024"})
		if err != nil {
			t.Fatalf("failed to create special package: %v", err)
		}
		if !created.IsSpecial {
			t.Error("special package must be marked special")
		}
		if created.Name == nil || *created.Name != "PROMO-2024" {
			t.Errorf("expected stored name PROMO-2024, got %v", created.Name)
		}
	})

	t.Run("SpecialDuplicateNameCaseInsensitive", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "PROMO-2024"}); err != nil {
			t.Fatalf("failed to create special package: %v", err)
		}

		_, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "promo-2024"})
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})

	t.Run("SpecialNameTooShort", func(t *testing.T) {
		a := newTestApp(t)

		_, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "AB"})
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})
}

func TestPackageServiceEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("EditDefault", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:  colorID,
			SerialID: serialID,
			Nominal:  25,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		edit, err := a.packages.GetPackageEdit(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get edit projection: %v", err)
		}
		edit.Nominal = 50
		edit.Note = "reprint"

		updated, err := a.packages.EditDefault(ctx, *edit)
		if err != nil {
			t.Fatalf("failed to edit package: %v", err)
		}
		if updated.Nominal != 50 || updated.Note != "reprint" {
			t.Errorf("edit should persist fields, got nominal %v note %q", updated.Nominal, updated.Note)
		}
		if updated.RowVersion == created.RowVersion {
			t.Error("edit should issue a fresh row version")
		}
	})

	t.Run("EditDefaultOnSpecial", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "PROMO-2024"})
		if err != nil {
			t.Fatalf("failed to create special package: %v", err)
		}

		_, err = a.packages.GetPackageEdit(ctx, created.ID)
		if !errors.Is(err, shared.ErrWrongState) {
			t.Errorf("default edit view of a special package should fail with ErrWrongState, got %v", err)
		}

		_, err = a.packages.EditDefault(ctx, models.PackageEdit{
			ID:         created.ID,
			ColorID:    colorID,
			SerialID:   serialID,
			RowVersion: created.RowVersion,
		})
		if !errors.Is(err, shared.ErrWrongState) {
			t.Errorf("default edit of a special package should fail with ErrWrongState, got %v", err)
		}
	})

	t.Run("StaleEditConflicts", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:  colorID,
			SerialID: serialID,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		edit, err := a.packages.GetPackageEdit(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get edit projection: %v", err)
		}

		if _, err := a.packages.Open(ctx, created.ID); err != nil {
			t.Fatalf("failed to open package: %v", err)
		}

		edit.Note = "late"
		_, err = a.packages.EditDefault(ctx, *edit)
		if !errors.Is(err, shared.ErrConflict) {
			t.Errorf("stale edit should fail with ErrConflict, got %v", err)
		}
	})
}

func TestPackageServiceConversions(t *testing.T) {
	ctx := context.Background()

	t.Run("MakeSpecialThenDefault", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:  colorID,
			SerialID: serialID,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		special, err := a.packages.MakeSpecial(ctx, created.ID, "SEASON-OPENER")
		if err != nil {
			t.Fatalf("failed to make package special: %v", err)
		}
		if !special.IsSpecial || special.Name == nil || *special.Name != "SEASON-OPENER" {
			t.Errorf("conversion should store the name, got %+v", special)
		}
		if special.ColorID == nil || special.SerialID == nil {
			t.Error("conversion to special should keep color and serial")
		}

		restored, err := a.packages.MakeDefault(ctx, created.ID, colorID, serialID, intPtr(200))
		if err != nil {
			t.Fatalf("failed to make package default: %v", err)
		}
		if restored.IsSpecial {
			t.Error("restored package must not be special")
		}
		if restored.Name != nil {
			t.Error("restored package must have its name cleared")
		}
		if restored.FirstNumber == nil || *restored.FirstNumber != 200 {
			t.Errorf("restored package should take the provided first number, got %v", restored.FirstNumber)
		}
	})

	t.Run("MakeSpecialTwice", func(t *testing.T) {
		a := newTestApp(t)

		created, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "PROMO-2024"})
		if err != nil {
			t.Fatalf("failed to create special package: %v", err)
		}

		_, err = a.packages.MakeSpecial(ctx, created.ID, "OTHER-NAME")
		if !errors.Is(err, shared.ErrWrongState) {
			t.Errorf("converting a special package to special should fail with ErrWrongState, got %v", err)
		}
	})

	t.Run("MakeDefaultValidatesCatalogs", func(t *testing.T) {
		a := newTestApp(t)

		created, err := a.packages.CreateSpecial(ctx, models.PackageSpecialCreate{Name: "PROMO-2024"})
		if err != nil {
			t.Fatalf("failed to create special package: %v", err)
		}

		_, err = a.packages.MakeDefault(ctx, created.ID, 7, 8, nil)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors for unknown catalogs, got %v", err)
		}

		pkg, err := a.packages.GetPackage(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get package: %v", err)
		}
		if !pkg.IsSpecial {
			t.Error("failed conversion must leave the package special")
		}
	})
}

func TestPackageServiceRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyPackage", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:  colorID,
			SerialID: serialID,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		if err := a.packages.Remove(ctx, created.ID); err != nil {
			t.Fatalf("failed to remove empty package: %v", err)
		}

		pkg, err := a.packages.GetPackage(ctx, created.ID)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if pkg != nil {
			t.Error("removed package should be absent")
		}
	})

	t.Run("PackageWithTickets", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		created, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:  colorID,
			SerialID: serialID,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}
		if _, err := a.packages.Open(ctx, created.ID); err != nil {
			t.Fatalf("failed to open package: %v", err)
		}

		ticket, err := a.tickets.Create(ctx, &models.Ticket{Number: 1, ColorID: colorID, SerialID: serialID})
		if err != nil {
			t.Fatalf("failed to create ticket: %v", err)
		}
		if err := a.tickets.MoveFewToPackage(ctx, created.ID, []int{ticket.ID}); err != nil {
			t.Fatalf("failed to move ticket: %v", err)
		}

		err = a.packages.Remove(ctx, created.ID)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("removing a package with tickets should fail with validation errors, got %v", err)
		}

		pkg, err := a.packages.GetPackage(ctx, created.ID)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if pkg == nil {
			t.Error("rejected removal must leave the package stored")
		}
	})
}

func TestCatalogServiceGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("RemoveReferencedColor", func(t *testing.T) {
		a := newTestApp(t)
		colorID, serialID := a.seedCatalogs(t)

		if _, err := a.packages.CreateDefault(ctx, models.PackageCreate{
			ColorID:  colorID,
			SerialID: serialID,
		}); err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		err := a.colors.Remove(ctx, colorID)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("removing a referenced color should fail with validation errors, got %v", err)
		}
	})

	t.Run("RenameCollision", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.colors.Create(ctx, "Red"); err != nil {
			t.Fatalf("failed to create color: %v", err)
		}
		blue, err := a.colors.Create(ctx, "Blue")
		if err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		edit, err := a.colors.GetColorEdit(ctx, blue.ID)
		if err != nil {
			t.Fatalf("failed to get edit projection: %v", err)
		}
		edit.Name = "red"

		_, err = a.colors.Edit(ctx, *edit)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("case-insensitive rename collision should fail, got %v", err)
		}
	})

	t.Run("NameLengthRules", func(t *testing.T) {
		a := newTestApp(t)

		// serials are short print-run codes
		serial, err := a.serials.Create(ctx, "AB")
		if err != nil {
			t.Fatalf("two-character serial name should be accepted, got %v", err)
		}
		if serial.Name != "AB" {
			t.Errorf("expected serial name AB, got %q", serial.Name)
		}

		_, err = a.colors.Create(ctx, "AB")
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("two-character color name should fail validation, got %v", err)
		}
	})

	t.Run("SelectListMemoized", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.colors.Create(ctx, "Red"); err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		first, err := a.colors.SelectList(ctx)
		if err != nil {
			t.Fatalf("failed to get select list: %v", err)
		}
		if len(first) != 1 {
			t.Fatalf("expected 1 color, got %d", len(first))
		}

		// creating invalidates, so the next read sees both colors sorted
		if _, err := a.colors.Create(ctx, "Amber"); err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		second, err := a.colors.SelectList(ctx)
		if err != nil {
			t.Fatalf("failed to get select list: %v", err)
		}
		if len(second) != 2 {
			t.Fatalf("expected 2 colors after invalidation, got %d", len(second))
		}
		if second[0].Name != "Amber" {
			t.Errorf("select list should be name-sorted, got %s first", second[0].Name)
		}
	})
}
