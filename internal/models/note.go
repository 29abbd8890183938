// Package models defines the data models shared by the storage and service
// layers.
package models

import "time"

// Note is the logical note entity. It spans a row in notes and a row in
// content joined by ContentID.
//
// When Protected is true, Title and Body hold ciphertext produced by the
// cipher adapter; both fields are always in the same state.
type Note struct {
	// ID is the stable integer identity of the note.
	ID int64

	// ContentID references the content row holding Body. It is generated once
	// at creation and never reused.
	ContentID string

	Title string
	Body  string

	Protected bool

	// Trashed marks a soft-deleted note, hidden from listings.
	Trashed bool

	Created time.Time
	Updated time.Time
}

// NoteSummary is a listing row.
type NoteSummary struct {
	ID        int64
	Title     string
	Protected bool
	Updated   time.Time
}

// NoteStat describes a single note picked out by a summary query.
type NoteStat struct {
	ID        int64
	ContentID string
	Title     string
	Protected bool
	Size      int
	Updated   time.Time
}

// Stats is the store summary.
type Stats struct {
	Total     int
	Trashed   int
	Protected int

	// Largest, Freshest and Stalest are nil when the store holds no live notes.
	Largest  *NoteStat
	Freshest *NoteStat
	Stalest  *NoteStat
}

// NoteFields is the part of a note the protection engine reads and rewrites.
type NoteFields struct {
	ContentID string
	Title     string
	Body      string
	Protected bool
}
