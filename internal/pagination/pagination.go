package pagination

import (
	"yatube/internal/models"
)

// PerPage is the fixed page size of every feed. Not user-adjustable.
const PerPage = 10

// Page is one slice of an ordered post sequence plus its metadata.
type Page struct {
	Posts      []models.Post
	Number     int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// Clamp resolves a requested page number against the total item count.
// Invalid or missing numbers fall back to page 1; numbers past the end clamp
// to the last page instead of erroring. An empty sequence still has one
// (empty) page.
func Clamp(requested int, total int64) (number, totalPages, offset int) {
	totalPages = int((total + PerPage - 1) / PerPage)
	if totalPages == 0 {
		totalPages = 1
	}

	number = requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return number, totalPages, (number - 1) * PerPage
}

// NewPage assembles page metadata around an already-sliced post list.
func NewPage(posts []models.Post, number, totalPages int) *Page {
	return &Page{
		Posts:      posts,
		Number:     number,
		TotalPages: totalPages,
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}
