package models

import (
	"time"
)

// Identity is the verified caller derived from signed Telegram init data.
// It is carried per request and never persisted.
type Identity struct {
	UserID   string
	UserName string
}

// Group is the stored group record, addressed by key group:{id}
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	InviteCode    string    `json:"inviteCode"`
}

// Member pairs a user id with the display name cached when they joined
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Expense is one shared expense, stored as a field of group:{id}:expenses
type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Note        string    `json:"note"`
	Timestamp   time.Time `json:"timestamp"`
	AddedBy     string    `json:"addedBy"`
	AddedByName string    `json:"addedByName"`
}
