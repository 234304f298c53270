package ragcore

import "github.com/google/uuid"

// NewDocumentKey generates a random documentKey for callers that don't
// derive one from their own source system (e.g. ad hoc text ingested
// without a natural identifier).
func NewDocumentKey() string {
	return uuid.NewString()
}
