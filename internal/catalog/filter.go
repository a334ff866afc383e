package catalog

import (
	"strings"

	"routine-builder/internal/domain"
)

// Filter returns the products matching both predicates, preserving catalog
// order. An empty category matches every category; an empty query matches
// every product. Query matching is a case-insensitive substring test over
// name and description. Pure: same inputs always yield the same output.
func Filter(products []domain.Product, category, query string) []domain.Product {
	category = strings.ToLower(strings.TrimSpace(category))
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !matchesCategory(p, category) {
			continue
		}
		if !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(p domain.Product, category string) bool {
	return category == "" || strings.ToLower(p.Category) == category
}

func matchesQuery(p domain.Product, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

// Categories returns the distinct categories in catalog order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		key := strings.ToLower(p.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
