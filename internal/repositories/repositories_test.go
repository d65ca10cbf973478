package repositories

import (
	"context"
	"database/sql"
	"testing"

	"tixpack/internal/models"
	"tixpack/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
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

	return db
}

// seedCatalogs inserts one color and one serial and returns their ids.
func seedCatalogs(t *testing.T, db *sql.DB) (int, int) {
	t.Helper()
	ctx := context.Background()

	color, err := NewColorStore(db).Create(ctx, &models.Color{Name: "Red"})
	if err != nil {
		t.Fatalf("failed to seed color: %v", err)
	}
	serial, err := NewSerialStore(db).Create(ctx, &models.Serial{Name: "AB"})
	if err != nil {
		t.Fatalf("failed to seed serial: %v", err)
	}
	return color.ID, serial.ID
}

func intPtr(n int) *int { return &n }

func TestColorStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewColorStore(db)
		created, err := store.Create(ctx, &models.Color{Name: "Green"})
		if err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		if created.ID == 0 {
			t.Error("color ID should be set after creation")
		}
		if created.RowVersion == "" {
			t.Error("row version should be issued on creation")
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewColorStore(db)
		created, err := store.Create(ctx, &models.Color{Name: "Green"})
		if err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		retrieved, err := store.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get color: %v", err)
		}
		if retrieved.Name != "Green" {
			t.Errorf("expected name Green, got %s", retrieved.Name)
		}
		if retrieved.RowVersion != created.RowVersion {
			t.Errorf("expected row version %s, got %s", created.RowVersion, retrieved.RowVersion)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewColorStore(db)
		created, err := store.Create(ctx, &models.Color{Name: "Green"})
		if err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		created.Name = "Dark Green"
		updated, err := store.Update(ctx, created)
		if err != nil {
			t.Fatalf("failed to update color: %v", err)
		}

		if updated.RowVersion == created.RowVersion {
			t.Error("update should issue a fresh row version")
		}

		retrieved, err := store.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get color: %v", err)
		}
		if retrieved.Name != "Dark Green" {
			t.Errorf("expected name Dark Green, got %s", retrieved.Name)
		}
	})

	t.Run("ExistsByName", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewColorStore(db)
		if _, err := store.Create(ctx, &models.Color{Name: "Green"}); err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		exists, err := store.ExistsByName(ctx, "gReEn")
		if err != nil {
			t.Fatalf("failed to check name: %v", err)
		}
		if !exists {
			t.Error("name check should be case-insensitive")
		}
	})

	t.Run("IsNameFree", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewColorStore(db)
		created, err := store.Create(ctx, &models.Color{Name: "Green"})
		if err != nil {
			t.Fatalf("failed to create color: %v", err)
		}

		free, err := store.IsNameFree(ctx, created.ID, "Green")
		if err != nil {
			t.Fatalf("failed to check name: %v", err)
		}
		if !free {
			t.Error("a color's own name should be free for itself")
		}

		other, err := store.Create(ctx, &models.Color{Name: "Blue"})
		if err != nil {
			t.Fatalf("failed to create color: %v", err)
		}
		free, err = store.IsNameFree(ctx, other.ID, "green")
		if err != nil {
			t.Fatalf("failed to check name: %v", err)
		}
		if free {
			t.Error("another color's name should not be free")
		}
	})

	t.Run("DependentCounts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)

		packages := NewPackageStore(db)
		if _, err := packages.Create(ctx, &models.Package{
			ColorID:  intPtr(colorID),
			SerialID: intPtr(serialID),
		}); err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		tickets := NewTicketStore(db)
		if _, err := tickets.Create(ctx, &models.Ticket{Number: 1, ColorID: colorID, SerialID: serialID}); err != nil {
			t.Fatalf("failed to create ticket: %v", err)
		}

		pkgCount, ticketCount, err := NewColorStore(db).DependentCounts(ctx, colorID)
		if err != nil {
			t.Fatalf("failed to count dependents: %v", err)
		}
		if pkgCount != 1 || ticketCount != 1 {
			t.Errorf("expected 1 package and 1 ticket, got %d and %d", pkgCount, ticketCount)
		}
	})
}

func TestPackageStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDefault", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		store := NewPackageStore(db)

		created, err := store.Create(ctx, &models.Package{
			ColorID:     intPtr(colorID),
			SerialID:    intPtr(serialID),
			FirstNumber: intPtr(100),
			Nominal:     25,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		if created.Name != nil {
			t.Error("default package should have no stored name")
		}
		if created.RowVersion == "" {
			t.Error("row version should be issued on creation")
		}

		retrieved, err := store.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get package: %v", err)
		}
		if retrieved.FirstNumber == nil || *retrieved.FirstNumber != 100 {
			t.Errorf("expected first number 100, got %v", retrieved.FirstNumber)
		}
	})

	t.Run("CreateSpecial", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		store := NewPackageStore(db)
		name := "PROMO-2024"
		created, err := store.Create(ctx, &models.Package{Name: &name, IsSpecial: true})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		retrieved, err := store.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get package: %v", err)
		}
		if retrieved.Name == nil || *retrieved.Name != name {
			t.Errorf("expected name %s, got %v", name, retrieved.Name)
		}
		if retrieved.ColorID != nil || retrieved.SerialID != nil {
			t.Error("special package created without catalogs should keep them nil")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		store := NewPackageStore(db)

		opened, err := store.Create(ctx, &models.Package{
			ColorID:  intPtr(colorID),
			SerialID: intPtr(serialID),
			IsOpened: true,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		name := "PROMO-2024"
		if _, err := store.Create(ctx, &models.Package{Name: &name, IsSpecial: true}); err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		all, err := store.List(ctx, models.PackageQuery{})
		if err != nil {
			t.Fatalf("failed to list packages: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 packages, got %d", len(all))
		}
		if all[0].ColorName != "Red" || all[0].SerialName != "AB" {
			t.Errorf("expected joined catalog names, got %q %q", all[0].ColorName, all[0].SerialName)
		}

		openedOnly, err := store.List(ctx, models.PackageQuery{Filter: models.FilterOpened})
		if err != nil {
			t.Fatalf("failed to list opened packages: %v", err)
		}
		if len(openedOnly) != 1 || openedOnly[0].ID != opened.ID {
			t.Errorf("opened filter should return only the opened package")
		}

		specialOnly, err := store.List(ctx, models.PackageQuery{Filter: models.FilterSpecial})
		if err != nil {
			t.Fatalf("failed to list special packages: %v", err)
		}
		if len(specialOnly) != 1 || specialOnly[0].Label() != name {
			t.Errorf("special filter should return only the special package")
		}

		byName, err := store.List(ctx, models.PackageQuery{Name: "promo"})
		if err != nil {
			t.Fatalf("failed to list packages by name: %v", err)
		}
		if len(byName) != 1 {
			t.Errorf("name fragment should match case-insensitively, got %d rows", len(byName))
		}
	})

	t.Run("Counts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		store := NewPackageStore(db)

		if _, err := store.Create(ctx, &models.Package{
			ColorID:  intPtr(colorID),
			SerialID: intPtr(serialID),
			IsOpened: true,
		}); err != nil {
			t.Fatalf("failed to create package: %v", err)
		}
		name := "PROMO-2024"
		if _, err := store.Create(ctx, &models.Package{Name: &name, IsSpecial: true}); err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		total, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count packages: %v", err)
		}
		opened, err := store.CountOpened(ctx)
		if err != nil {
			t.Fatalf("failed to count opened packages: %v", err)
		}
		special, err := store.CountSpecial(ctx)
		if err != nil {
			t.Fatalf("failed to count special packages: %v", err)
		}

		if total != 2 || opened != 1 || special != 1 {
			t.Errorf("expected counts 2/1/1, got %d/%d/%d", total, opened, special)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		store := NewPackageStore(db)

		created, err := store.Create(ctx, &models.Package{
			ColorID:  intPtr(colorID),
			SerialID: intPtr(serialID),
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		if err := store.Remove(ctx, created.ID); err != nil {
			t.Fatalf("failed to remove package: %v", err)
		}

		exists, err := store.ExistsByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to check existence: %v", err)
		}
		if exists {
			t.Error("removed package should not exist")
		}
	})
}

func TestTicketStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Unallocated", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		store := NewTicketStore(db)

		for _, n := range []int{7, 5, 6} {
			if _, err := store.Create(ctx, &models.Ticket{Number: n, ColorID: colorID, SerialID: serialID}); err != nil {
				t.Fatalf("failed to create ticket: %v", err)
			}
		}

		tickets, err := store.Unallocated(ctx, colorID, serialID)
		if err != nil {
			t.Fatalf("failed to list unallocated tickets: %v", err)
		}
		if len(tickets) != 3 {
			t.Fatalf("expected 3 unallocated tickets, got %d", len(tickets))
		}
		for i, want := range []int{5, 6, 7} {
			if tickets[i].Number != want {
				t.Errorf("position %d: expected number %d, got %d", i, want, tickets[i].Number)
			}
		}
	})

	t.Run("MoveToPackage", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		packages := NewPackageStore(db)
		store := NewTicketStore(db)

		pkg, err := packages.Create(ctx, &models.Package{
			ColorID:  intPtr(colorID),
			SerialID: intPtr(serialID),
			IsOpened: true,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		var ids []int
		for _, n := range []int{5, 6, 7} {
			ticket, err := store.Create(ctx, &models.Ticket{Number: n, ColorID: colorID, SerialID: serialID})
			if err != nil {
				t.Fatalf("failed to create ticket: %v", err)
			}
			ids = append(ids, ticket.ID)
		}

		if err := store.MoveToPackage(ctx, pkg.ID, ids); err != nil {
			t.Fatalf("failed to move tickets: %v", err)
		}

		count, err := store.CountByPackage(ctx, pkg.ID)
		if err != nil {
			t.Fatalf("failed to count package tickets: %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 tickets in package, got %d", count)
		}

		remaining, err := store.CountUnallocated(ctx, colorID, serialID)
		if err != nil {
			t.Fatalf("failed to count unallocated tickets: %v", err)
		}
		if remaining != 0 {
			t.Errorf("expected no unallocated tickets left, got %d", remaining)
		}
	})

	t.Run("Detach", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		colorID, serialID := seedCatalogs(t, db)
		packages := NewPackageStore(db)
		store := NewTicketStore(db)

		pkg, err := packages.Create(ctx, &models.Package{
			ColorID:  intPtr(colorID),
			SerialID: intPtr(serialID),
			IsOpened: true,
		})
		if err != nil {
			t.Fatalf("failed to create package: %v", err)
		}

		ticket, err := store.Create(ctx, &models.Ticket{
			Number:    42,
			ColorID:   colorID,
			SerialID:  serialID,
			PackageID: intPtr(pkg.ID),
		})
		if err != nil {
			t.Fatalf("failed to create ticket: %v", err)
		}

		detached, err := store.Detach(ctx, ticket)
		if err != nil {
			t.Fatalf("failed to detach ticket: %v", err)
		}
		if detached.PackageID != nil {
			t.Error("detached ticket should have no package")
		}
		if detached.Number != 42 {
			t.Errorf("detached ticket should keep its number, got %d", detached.Number)
		}

		retrieved, err := store.GetByID(ctx, ticket.ID)
		if err != nil {
			t.Fatalf("failed to get ticket: %v", err)
		}
		if retrieved.PackageID != nil {
			t.Error("stored ticket should be unallocated after detach")
		}
	})
}
