package service

import (
	"strings"

	"github.com/civiz/civiz/internal/domain"
)

// Classifier maps free-text vision proposals onto funding categories using
// ordered keyword matching. Classification is deterministic and total: the
// rule order is the priority order, the first category with a matching
// keyword wins, and unmatched text falls back to the default category.
type Classifier struct {
	rules    []domain.CategoryRule
	fallback domain.CategoryID
}

// NewClassifier creates a classifier over the fixed category rule set.
// Parameters: none.
// Returns:
//   - *Classifier: classifier using domain.CategoryRules in priority order.
func NewClassifier() *Classifier {
	return &Classifier{
		rules:    domain.CategoryRules,
		fallback: domain.DefaultCategory,
	}
}

// Classify returns the funding category for the given vision text.
// Parameters:
//   - text: free-text proposal; matching is case-insensitive substring.
// Returns:
//   - domain.CategoryID: first matching category in priority order, or the
//     default category when nothing matches.
func (c *Classifier) Classify(text string) domain.CategoryID {
	lower := strings.ToLower(text)

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Category
			}
		}
	}

	return c.fallback
}
