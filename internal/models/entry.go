package models

import "time"

// JournalEntry is a single journal record.
// @Description Journal entry
type JournalEntry struct {
	ID        int64     `json:"id" example:"1"`                            // Entry ID
	Title     string    `json:"title" example:"Day 1"`                     // Entry title
	Content   string    `json:"content" example:"Hello"`                   // Entry body
	CreatedAt time.Time `json:"created_at" example:"2024-05-01T09:30:00Z"` // Creation time
	UpdatedAt time.Time `json:"updated_at" example:"2024-05-01T09:30:00Z"` // Last update time
}
