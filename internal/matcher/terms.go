// file: internal/matcher/terms.go
// version: 1.0.0
// guid: cc866d2e-384d-4e33-bfe9-d12db39150fb

package matcher

import "github.com/jdfalk/medication-identifier/internal/models"

// ExtractTerms flattens a record and its optional metadata into the
// deduplicated lowercase term set the scorer matches against: display
// name, generic name, every brand name, active ingredient, dosage
// string, color label, and shape label. Absent fields contribute
// nothing. The set is non-empty whenever the display name is, which the
// store guarantees.
func ExtractTerms(rec models.Record) []string {
	seen := make(map[string]struct{}, 8)
	terms := make([]string, 0, 8)

	terms = appendTerm(terms, seen, rec.Name)

	md := rec.Metadata
	if md == nil {
		return terms
	}
	terms = appendTerm(terms, seen, md.GenericName)
	for _, brand := range md.BrandNames {
		terms = appendTerm(terms, seen, brand)
	}
	terms = appendTerm(terms, seen, md.ActiveIngredient)
	terms = appendTerm(terms, seen, md.Dosage)
	terms = appendTerm(terms, seen, md.Color)
	terms = appendTerm(terms, seen, md.Shape)
	return terms
}
