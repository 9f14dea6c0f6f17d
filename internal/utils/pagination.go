package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// DefaultPageSize is used when limit is missing or not one of PageSizes.
const DefaultPageSize = 10

// PageSizes are the page sizes the order console offers.
var PageSizes = []int{10, 25, 50}

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params. limit snaps to the
// largest allowed page size not above the requested one.
func ParsePagination(c *fiber.Ctx) Pagination {
	return NewPagination(
		parseInt(c.Query("page", "1"), 1),
		parseInt(c.Query("limit", strconv.Itoa(DefaultPageSize)), DefaultPageSize),
	)
}

// NewPagination normalizes page and limit.
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = 1
	}

	size := DefaultPageSize
	for _, allowed := range PageSizes {
		if limit >= allowed {
			size = allowed
		}
	}

	return Pagination{
		Page:   page,
		Limit:  size,
		Offset: (page - 1) * size,
	}
}

// TotalPages returns the number of pages needed for total rows.
func (p Pagination) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
