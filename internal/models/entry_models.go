package models

import "time"

type DreamEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	DreamDate    time.Time `json:"dream_date"`
	Tags         []string  `json:"tags"`
	SleepQuality *int      `json:"sleep_quality,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EntryInput is what a caller supplies to create or replace an entry.
type EntryInput struct {
	Title        string     `json:"title" validate:"max=200"`
	Content      string     `json:"content" validate:"required"`
	DreamDate    *time.Time `json:"dream_date"`
	Tags         []string   `json:"tags" validate:"max=32,dive,max=64"`
	SleepQuality *int       `json:"sleep_quality" validate:"omitempty,min=1,max=10"`
}

// AnalyzedEntry pairs an entry with the analysis computed from its content.
type AnalyzedEntry struct {
	Entry    DreamEntry     `json:"entry"`
	Analysis AnalysisResult `json:"analysis"`
}

// EntryMessage is the payload on the inbound entries topic.
type EntryMessage struct {
	ID string `json:"id,omitempty"`
	EntryInput
}
