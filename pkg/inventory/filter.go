package inventory

import "github.com/stockx-tools/stockroom/pkg/types"

// listingFilter narrows a listing scan by one field. An empty allowed set
// means "any"; a listing matches when any of its field values is allowed.
type listingFilter struct {
	values  func(*types.Listing) []string
	allowed map[string]struct{}
}

func newListingFilter(values func(*types.Listing) []string) *listingFilter {
	return &listingFilter{
		values:  values,
		allowed: make(map[string]struct{}),
	}
}

// include widens the allowed set by union. Empty input is a no-op, not a
// wildcard reset.
func (f *listingFilter) include(values []string) {
	for _, value := range values {
		f.allowed[value] = struct{}{}
	}
}

// apply narrows the allowed set: intersect when already constrained,
// otherwise adopt. Empty input means "no constraint" and is a no-op.
func (f *listingFilter) apply(values []string) {
	if len(values) == 0 {
		return
	}
	if len(f.allowed) == 0 {
		f.include(values)
		return
	}

	narrowed := make(map[string]struct{})
	for _, value := range values {
		if _, ok := f.allowed[value]; ok {
			narrowed[value] = struct{}{}
		}
	}
	f.allowed = narrowed
}

func (f *listingFilter) match(listing *types.Listing) bool {
	if len(f.allowed) == 0 {
		return true
	}
	for _, value := range f.values(listing) {
		if _, ok := f.allowed[value]; ok {
			return true
		}
	}
	return false
}

func (f *listingFilter) empty() bool {
	return len(f.allowed) == 0
}

func (f *listingFilter) allowedValues() []string {
	values := make([]string, 0, len(f.allowed))
	for value := range f.allowed {
		values = append(values, value)
	}
	return values
}
