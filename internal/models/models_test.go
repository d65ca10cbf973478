package models

import "testing"

func intPtr(n int) *int { return &n }

func TestPackageLabel(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		pkg := &Package{
			ColorID:     intPtr(1),
			SerialID:    intPtr(2),
			FirstNumber: intPtr(100),
		}

		if got := pkg.Label("Red", "AB"); got != "Red AB-000100" {
			t.Errorf("expected Red AB-000100, got %q", got)
		}
	})

	t.Run("DefaultWithoutFirstNumber", func(t *testing.T) {
		pkg := &Package{ColorID: intPtr(1), SerialID: intPtr(2)}

		if got := pkg.Label("Red", "AB"); got != "Red AB" {
			t.Errorf("expected Red AB, got %q", got)
		}
	})

	t.Run("Special", func(t *testing.T) {
		name := "PROMO-2024"
		pkg := &Package{Name: &name, IsSpecial: true, FirstNumber: intPtr(100)}

		if got := pkg.Label("Red", "AB"); got != "PROMO-2024" {
			t.Errorf("special package should display its stored name, got %q", got)
		}
	})
}

func TestPackageFilter(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, f := range []PackageFilter{FilterAll, FilterOpened, FilterClosed, FilterSpecial, FilterDefault} {
			if got := ParsePackageFilter(f.String()); got != f {
				t.Errorf("round trip for %s: got %s", f, got)
			}
		}
	})

	t.Run("UnknownDefaultsToAll", func(t *testing.T) {
		if got := ParsePackageFilter("bogus"); got != FilterAll {
			t.Errorf("unknown filter should parse to all, got %s", got)
		}
	})

	t.Run("NextWraps", func(t *testing.T) {
		f := FilterAll
		for i := 0; i < 5; i++ {
			f = f.Next()
		}
		if f != FilterAll {
			t.Errorf("cycling 5 tabs should wrap to all, got %s", f)
		}
	})
}
