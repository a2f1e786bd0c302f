package inventory

import (
	"sort"
	"testing"

	"github.com/stockx-tools/stockroom/pkg/types"
)

func styleFilter() *listingFilter {
	return newListingFilter(func(l *types.Listing) []string { return l.StyleIDs() })
}

func TestListingFilter_Include(t *testing.T) {
	f := styleFilter()

	f.include([]string{"A", "B"})
	f.include([]string{"B", "C"})
	f.include(nil) // no-op, not a reset

	values := f.allowedValues()
	sort.Strings(values)
	if len(values) != 3 || values[0] != "A" || values[2] != "C" {
		t.Errorf("unexpected allowed set %v", values)
	}
}

func TestListingFilter_Apply(t *testing.T) {
	t.Run("adopts-when-unconstrained", func(t *testing.T) {
		f := styleFilter()
		f.apply([]string{"A", "B"})
		if len(f.allowedValues()) != 2 {
			t.Errorf("unexpected allowed set %v", f.allowedValues())
		}
	})

	t.Run("intersects-when-constrained", func(t *testing.T) {
		f := styleFilter()
		f.include([]string{"A", "B"})
		f.apply([]string{"B", "C"})

		values := f.allowedValues()
		if len(values) != 1 || values[0] != "B" {
			t.Errorf("expected [B], got %v", values)
		}
	})

	t.Run("empty-input-is-no-constraint", func(t *testing.T) {
		f := styleFilter()
		f.include([]string{"A"})
		f.apply(nil)
		if len(f.allowedValues()) != 1 {
			t.Errorf("unexpected allowed set %v", f.allowedValues())
		}
	})
}

func TestListingFilter_Match(t *testing.T) {
	listing := activeListing("L1", "p1", "v1", "DD1391-100/DD1391-101", "9", 100)

	t.Run("empty-matches-everything", func(t *testing.T) {
		f := styleFilter()
		if !f.match(&listing) {
			t.Error("unconstrained filter must match")
		}
	})

	t.Run("any-value-overlap", func(t *testing.T) {
		f := styleFilter()
		f.include([]string{"DD1391-101", "ZZ0000-000"})
		if !f.match(&listing) {
			t.Error("expected match on the second style id")
		}
	})

	t.Run("no-overlap", func(t *testing.T) {
		f := styleFilter()
		f.include([]string{"ZZ0000-000"})
		if f.match(&listing) {
			t.Error("expected no match")
		}
	})
}
