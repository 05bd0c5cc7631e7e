package models

import (
	"math"
	"time"
)

const (
	MaxMessageLength = 2000

	// RecentLimit bounds the public preview listing.
	RecentLimit = 100

	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Feedback is a stored submission. ID and CreatedAt are assigned by the store.
type Feedback struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Message   string     `json:"message"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Sentiment is written by the enrichment worker; this service only reads it.
type Sentiment struct {
	Label     string     `json:"label"`
	Score     float64    `json:"score"`
	Version   string     `json:"version,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Created is what an insert hands back to the caller.
type Created struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type Page struct {
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Total    int64      `json:"total"`
	Data     []Feedback `json:"data"`
}

// ClampPage applies the pagination bounds: page >= 1, pageSize in [1, MaxPageSize].
// page is also capped so that Offset cannot overflow; such a page is past the
// end of any store and reads as empty.
func ClampPage(page, pageSize int) (int, int) {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt/pageSize {
		page = math.MaxInt/pageSize + 1
	}
	return page, pageSize
}

// Offset returns the number of rows to skip for a clamped page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// ClampRecent bounds a preview limit to [1, RecentLimit].
func ClampRecent(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > RecentLimit {
		return RecentLimit
	}
	return limit
}
