package domain

import "strings"

// CategoryAll is the sentinel category that disables category filtering.
const CategoryAll = "All"

// ViewFilter holds the current search, category, and page state for the
// product browse view. The derived view is always recomputed from the catalog
// and this filter; nothing is cached in between.
type ViewFilter struct {
	SearchTerm string `json:"search_term"`
	Category   string `json:"category"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// NewViewFilter returns a filter positioned on page 1 with the "All" category.
func NewViewFilter(pageSize int) ViewFilter {
	return ViewFilter{
		Category: CategoryAll,
		Page:     1,
		PageSize: pageSize,
	}
}

// FilterProducts applies the category filter then the text filter, in that
// order. The category match is an exact trimmed comparison against the
// product family; the text match is a case-insensitive substring search over
// name, code, and brand (an absent brand is simply excluded from the match).
func FilterProducts(products []Product, f ViewFilter) []Product {
	out := make([]Product, 0, len(products))

	category := strings.TrimSpace(f.Category)
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))

	for _, p := range products {
		if category != "" && category != CategoryAll && strings.TrimSpace(p.Family) != category {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTerm(p Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.ProductCode), term) {
		return true
	}
	if p.Brand != "" && strings.Contains(strings.ToLower(p.Brand), term) {
		return true
	}
	return false
}

// TotalPages returns ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := count / pageSize
	if count%pageSize > 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Paginate slices one page out of the filtered list. Pages are 1-based; a
// page past the end yields an empty slice.
func Paginate(filtered []Product, page, pageSize int) []Product {
	if pageSize <= 0 || page < 1 {
		return []Product{}
	}
	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return []Product{}
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// Categories returns the distinct trimmed product families present in the
// catalog, with the "All" sentinel first. Order of first appearance is kept.
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	out := []string{CategoryAll}
	for _, p := range products {
		family := strings.TrimSpace(p.Family)
		if family == "" {
			continue
		}
		if _, ok := seen[family]; ok {
			continue
		}
		seen[family] = struct{}{}
		out = append(out, family)
	}
	return out
}
