package application

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/ahrav/go-lifewheel/internal/domain"
)

// Normalizer turns raw keyword input into the form that is stored and the
// key that is compared.
type Normalizer struct {
	caseSensitive bool
}

// NewNormalizer returns a Normalizer. Keys are case-folded unless
// caseSensitive is set.
func NewNormalizer(caseSensitive bool) Normalizer {
	return Normalizer{caseSensitive: caseSensitive}
}

// Display trims s and applies NFKC so that full-width and compatibility
// forms collapse to a single spelling.
func (n Normalizer) Display(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// Key returns the comparison key for s.
func (n Normalizer) Key(s string) string {
	d := n.Display(s)
	if n.caseSensitive {
		return d
	}
	// cases.Caser keeps state between calls, so a fresh one per key.
	return cases.Fold().String(d)
}

// KeywordValidator accepts or rejects the keyword triads given for each
// category. It remembers every committed keyword so that no word is used
// for two categories.
type KeywordValidator struct {
	norm        Normalizer
	minDistance int
	maxLength   int

	// reserved maps a category key to the category's display name.
	reserved map[string]string
	// categories lists category keys in configured order.
	categories []string
	// used maps a committed keyword key to the category it was given for.
	used map[string]string
	// order lists committed keys for similarity checks.
	order []string
}

// NewKeywordValidator creates a validator that reserves the given
// category names.
func NewKeywordValidator(categories []string, cfg KeywordConfig) *KeywordValidator {
	n := NewNormalizer(cfg.CaseSensitive)
	reserved := make(map[string]string, len(categories))
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		k := n.Key(c)
		reserved[k] = c
		keys = append(keys, k)
	}
	return &KeywordValidator{
		norm:        n,
		minDistance: cfg.MinDistance,
		maxLength:   cfg.MaxLength,
		reserved:    reserved,
		categories:  keys,
		used:        make(map[string]string),
	}
}

// Validate checks words for category and returns them normalized for
// storage. Checks run in a fixed order and the first failure is returned
// as a *domain.KeywordError: count, empty, length, duplicate, reserved,
// used, similar.
func (v *KeywordValidator) Validate(category string, words []string) ([]string, error) {
	if len(words) != domain.KeywordsPerCategory {
		return nil, domain.NewKeywordError(category, "",
			fmt.Errorf("%w: got %d, want %d", domain.ErrKeywordCount, len(words), domain.KeywordsPerCategory))
	}

	out := make([]string, len(words))
	keys := make([]string, len(words))
	for i, w := range words {
		out[i] = v.norm.Display(w)
		if out[i] == "" {
			return nil, domain.NewKeywordError(category, "", domain.ErrEmptyKeyword)
		}
		keys[i] = v.norm.Key(w)
	}

	if v.maxLength > 0 {
		for _, w := range out {
			if utf8.RuneCountInString(w) > v.maxLength {
				return nil, domain.NewKeywordError(category, w,
					fmt.Errorf("%w: max %d characters", domain.ErrKeywordTooLong, v.maxLength))
			}
		}
	}

	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[i] == keys[j] {
				return nil, domain.NewKeywordError(category, out[j], domain.ErrDuplicateKeyword)
			}
		}
	}

	for i, k := range keys {
		if _, ok := v.reserved[k]; ok {
			return nil, domain.NewKeywordError(category, out[i], domain.ErrReservedKeyword)
		}
	}

	for i, k := range keys {
		if prev, ok := v.used[k]; ok {
			return nil, domain.NewKeywordError(category, out[i],
				fmt.Errorf("%w: given for %s", domain.ErrKeywordUsed, prev))
		}
	}

	if v.minDistance > 0 {
		for i, k := range keys {
			if near, ok := v.nearest(k); ok {
				return nil, domain.NewKeywordError(category, out[i],
					fmt.Errorf("%w: close to %q", domain.ErrKeywordTooSimilar, near))
			}
		}
	}

	return out, nil
}

// nearest reports the first category or committed keyword within
// minDistance edits of key.
func (v *KeywordValidator) nearest(key string) (string, bool) {
	for _, k := range v.categories {
		if levenshtein.ComputeDistance(key, k) <= v.minDistance {
			return v.reserved[k], true
		}
	}
	for _, k := range v.order {
		if levenshtein.ComputeDistance(key, k) <= v.minDistance {
			return k, true
		}
	}
	return "", false
}

// Commit records words as used by category. Words are expected to have
// passed Validate.
func (v *KeywordValidator) Commit(category string, words []string) {
	for _, w := range words {
		k := v.norm.Key(w)
		if _, ok := v.used[k]; ok {
			continue
		}
		v.used[k] = category
		v.order = append(v.order, k)
	}
}

// Used returns the number of committed keywords.
func (v *KeywordValidator) Used() int { return len(v.order) }
