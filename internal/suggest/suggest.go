// file: internal/suggest/suggest.go
// version: 1.1.0
// guid: 72ad64cd-8629-4d07-adc7-9b621fc9d4f8

package suggest

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jdfalk/medication-identifier/internal/database"
)

// DefaultLimit caps suggestion lists when the caller passes no limit.
const DefaultLimit = 8

// Suggester provides typeahead completion over medication names.
type Suggester struct {
	store database.Store
}

// New creates a Suggester backed by the given store.
func New(store database.Store) *Suggester {
	return &Suggester{store: store}
}

// Suggest returns up to limit medication names matching the partial
// query, best match first. Names, brand names, and generic names are
// all candidates; matching is accent- and case-insensitive.
func (s *Suggester) Suggest(query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	records, err := s.store.GetAllRecords(0, 0)
	if err != nil {
		return nil, err
	}

	candidates := []string{}
	seen := map[string]bool{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		candidates = append(candidates, name)
	}
	for _, rec := range records {
		add(rec.Name)
		if rec.Metadata == nil {
			continue
		}
		add(rec.Metadata.GenericName)
		for _, brand := range rec.Metadata.BrandNames {
			add(brand)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	sort.Stable(ranks)

	names := []string{}
	for _, r := range ranks {
		if len(names) >= limit {
			break
		}
		names = append(names, r.Target)
	}
	return names, nil
}
