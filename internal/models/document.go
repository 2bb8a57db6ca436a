// Package models defines core data structures for documents, chunks, answers, and quiz rounds.
package models

import "time"

// Document is the single live document of a session. It is replaced wholesale on every ingestion.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	RawText    string    `json:"-"`
	Chunks     []Chunk   `json:"-"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is a bounded-length slice of document text, the unit of embedding and retrieval.
// Index is the chunk's position in Document.Chunks and in the vector index.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// IngestResult is returned by a successful ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Chunks     int    `json:"chunks"`
	// Summary is one "- ..." line per summarised chunk; chunks whose summary failed are omitted.
	Summary string `json:"summary"`
}

// Status describes the live session.
type Status struct {
	Loaded          bool      `json:"loaded"`
	DocumentID      string    `json:"document_id,omitempty"`
	Filename        string    `json:"filename,omitempty"`
	Chunks          int       `json:"chunks"`
	VectorIndexSize int       `json:"vector_index_size"`
	VectorIndexType string    `json:"vector_index_type,omitempty"`
	Dimensions      int       `json:"dimensions,omitempty"`
	QuizReady       bool      `json:"quiz_ready"`
	IngestedAt      time.Time `json:"ingested_at,omitempty"`
}
