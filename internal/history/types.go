package history

import "time"

// Record is one completed debug-and-run analysis for a user. Records are
// written once after a successful analysis and never mutated; they only ever
// drop out of listings by falling outside the requested window.
type Record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Code        string    `json:"code"`
	Language    string    `json:"language"`
	Output      string    `json:"output"`
	Changes     string    `json:"changes"`
	Suggestions string    `json:"suggestions"`
	Timestamp   time.Time `json:"timestamp"`
}
