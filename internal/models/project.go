package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID
	Title       string
	Description string
	Images      []string // URLs or base64 encoded data
	Stack       []string
	Tags        []string
	Author      string
	DemoURL     string
	CreatedBy   uuid.UUID
	Active      bool // false means the project is soft deleted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectPatch describes partial project update: nil fields are left untouched
type ProjectPatch struct {
	Title       *string
	Description *string
	Images      []string
	Stack       []string
	Tags        []string
	Author      *string
	DemoURL     *string
}

// Page of projects list
type Page struct {
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

func NewPage(total, page, limit int) Page {
	p := Page{Total: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	return p
}

// Offset of the first item on the page.
// Pages too far to address saturate to math.MaxInt: past the end either way
func (p Page) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}
