package models

import "errors"

// Error taxonomy shared by the session, answering, and quiz services.
// Callers match with errors.Is; wrapped errors carry the underlying cause.
var (
	ErrNoDocumentLoaded      = errors.New("no document loaded")
	ErrInvalidInput          = errors.New("invalid input")
	ErrIndexNotReady         = errors.New("index not ready")
	ErrExtractionFailure     = errors.New("text extraction failed")
	ErrIndexBuild            = errors.New("index build failed")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrNoQuestionGenerated   = errors.New("no logic question generated")
)
