package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Artifact names combine a timestamp with a random token. The timestamp
// keeps directory listings chronological; the uuid makes names unique across
// concurrent and sequential captures without coordination.

const nameTimeLayout = "20060102-150405"

// NewImageName returns a unique image filename for a capture taken at t.
func NewImageName(t time.Time) string {
	return fmt.Sprintf("shot-%s-%s.png", t.UTC().Format(nameTimeLayout), uuid.NewString())
}

// NewHTMLName returns a unique filename for a capture's archived HTML.
func NewHTMLName(t time.Time) string {
	return fmt.Sprintf("page-%s-%s.html", t.UTC().Format(nameTimeLayout), uuid.NewString())
}
