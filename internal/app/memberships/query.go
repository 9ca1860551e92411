package memberships

import (
	"sort"
	"strings"

	"github.com/Overland-East-Bay/membership-tracker/internal/domain"
)

// Category is a list filter: CategoryAll or one of the membership types.
type Category string

const CategoryAll Category = "all"

// ParseCategory parses a raw filter value. Empty input means CategoryAll.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(CategoryAll) {
		return CategoryAll, true
	}
	if domain.MembershipType(s).Valid() {
		return Category(s), true
	}
	return Category(s), false
}

// Query derives a display list from the full collection.
type Query struct {
	// Term is matched case-insensitively against name, number and notes.
	// A blank term matches every record.
	Term string
	// Category restricts results to one type. The zero value behaves as CategoryAll.
	Category Category
}

// Matches reports whether m passes both the category filter and the search term.
func (q Query) Matches(m domain.Membership) bool {
	return q.matchesCategory(m) && matchesTerm(m, normalizeTerm(q.Term))
}

func (q Query) matchesCategory(m domain.Membership) bool {
	if q.Category == "" || q.Category == CategoryAll {
		return true
	}
	return string(m.Type) == string(q.Category)
}

// Apply filters records by category, then by search term, and orders the
// result by creation time, newest first. Records created at the same
// instant keep their input order. records is not modified.
func Apply(records []domain.Membership, q Query) []domain.Membership {
	out := make([]domain.Membership, 0, len(records))
	for _, m := range records {
		if q.Matches(m) {
			out = append(out, m.Clone())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// normalizeTerm lowercases the term; a blank term becomes "".
func normalizeTerm(term string) string {
	if strings.TrimSpace(term) == "" {
		return ""
	}
	return strings.ToLower(term)
}

func matchesTerm(m domain.Membership, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Number), term) {
		return true
	}
	return m.Notes != nil && strings.Contains(strings.ToLower(*m.Notes), term)
}
