// Package pagination splits filtered catalog results into pages, optionally
// promoting items at or above a star threshold.
package pagination

// Threshold configures star-threshold pagination. A zero MinStars disables it.
type Threshold struct {
	MinStars   int  `json:"minStars"`
	ShowOthers bool `json:"showOthersOnFollowingPages"`
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// Paginate returns the requested page of items.
//
// With a threshold, items are partitioned (order preserved) into those with at
// least MinStars stars and the rest. Without ShowOthers only the first group is
// paginated. With ShowOthers page 1 holds every item of the first group,
// regardless of pageSize, and the following pages hold the rest in pageSize
// slices.
//
// pageSize below 1 is treated as 1, page below 1 as 1 and a negative MinStars
// as 0. A page past the last one is empty.
func Paginate[T any](items []T, stars func(T) int, threshold Threshold, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	minStars := max(threshold.MinStars, 0)

	if minStars == 0 {
		return Page[T]{
			Items:      slicePage(items, (page-1)*pageSize, pageSize),
			TotalPages: ceilDiv(len(items), pageSize),
			TotalItems: len(items),
			Page:       page,
			PageSize:   pageSize,
		}
	}

	above := make([]T, 0, len(items))
	below := make([]T, 0)
	for _, item := range items {
		if stars(item) >= minStars {
			above = append(above, item)
		} else {
			below = append(below, item)
		}
	}

	if !threshold.ShowOthers {
		return Page[T]{
			Items:      slicePage(above, (page-1)*pageSize, pageSize),
			TotalPages: ceilDiv(len(above), pageSize),
			TotalItems: len(above),
			Page:       page,
			PageSize:   pageSize,
		}
	}

	result := Page[T]{
		TotalItems: len(above) + len(below),
		Page:       page,
		PageSize:   pageSize,
	}
	if len(above) == 0 {
		result.TotalPages = max(ceilDiv(len(below), pageSize), 1)
		result.Items = slicePage(below, (page-1)*pageSize, pageSize)
		return result
	}

	result.TotalPages = 1 + ceilDiv(len(below), pageSize)
	if page == 1 {
		result.Items = append(make([]T, 0, len(above)), above...)
	} else {
		result.Items = slicePage(below, (page-2)*pageSize, pageSize)
	}
	return result
}

// slicePage copies items[start:start+size], clamped to the slice bounds.
func slicePage[T any](items []T, start, size int) []T {
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return append(make([]T, 0, end-start), items[start:end]...)
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
