package history

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff is the set of changed chunks between two archived page bodies.
type Diff struct {
	BaseID string  `json:"baseId"`
	HeadID string  `json:"headId"`
	Chunks []Chunk `json:"chunks"`
}

// Chunk is a single contiguous change.
type Chunk struct {
	Type    string `json:"type"`              // "added" or "removed"
	Content string `json:"content,omitempty"` // content for the chunk
}

// ComputeDiff diffs two page bodies at the character level and keeps only
// the changed chunks. Equal runs and whitespace-only changes are dropped.
func ComputeDiff(baseID, headID string, base, head []byte) Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(base), string(head), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]Chunk, 0)
	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Type: chunkType, Content: d.Text})
	}

	return Diff{BaseID: baseID, HeadID: headID, Chunks: chunks}
}
