package todo

import "time"

// Todo is the only entity the API manages.
type Todo struct {
	ID        int64     `json:"id" xml:"id"`
	Title     string    `json:"title" xml:"title"`
	Due       Date      `json:"due" xml:"due"`
	Notes     string    `json:"notes" xml:"notes"`
	CreatedAt time.Time `json:"created_at" xml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" xml:"updated_at"`
}

// Summary is the narrow view used by the JSON collection listing.
type Summary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func (t Todo) Summary() Summary {
	return Summary{ID: t.ID, Title: t.Title}
}

// Projection selects which columns a listing loads.
type Projection int

const (
	ProjectFull Projection = iota
	ProjectSummary
)

const (
	MaxTitleLen = 200
	MaxNotesLen = 1000
)
