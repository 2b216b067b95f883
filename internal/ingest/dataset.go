package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
)

// RootPath is where the study record lives inside the API document.
var RootPath = []string{"apiResponse", "studyMarketingRecruitment"}

// Dataset is the study record: channel-group id -> stage id -> counts.
type Dataset struct {
	root Node
}

// NewDataset wraps an already extracted study record.
func NewDataset(study map[string]any) Dataset {
	return Dataset{root: NewNode(study)}
}

// GroupIDs returns every top-level key of the record, sorted.
func (d Dataset) GroupIDs() []string { return d.root.Keys() }

// Stage returns the per-stage object for a channel group.
func (d Dataset) Stage(groupID, stageID string) Node {
	return d.root.Path(groupID, stageID)
}

// Extract validates the fixed root path and returns the first study record.
// Anything below the record is tolerated as sparse.
func Extract(doc any) (Dataset, error) {
	root := NewNode(doc)
	path := "apiResponse"
	node := root.Get(RootPath[0])
	if !node.IsObject() {
		return Dataset{}, errs.NewMalformedDatasetError(path, "missing or not an object")
	}
	path += "." + RootPath[1]
	node = node.Get(RootPath[1])
	switch n := node.Len(); {
	case n < 0:
		return Dataset{}, errs.NewMalformedDatasetError(path, "missing or not a sequence")
	case n == 0:
		return Dataset{}, errs.NewMalformedDatasetError(path, "empty sequence")
	}
	study := node.Index(0)
	if !study.IsObject() {
		return Dataset{}, errs.NewMalformedDatasetError(path+"[0]", "not an object")
	}
	return Dataset{root: study}, nil
}

// Decode parses a JSON document into a generic tree.
func Decode(r io.Reader) (any, error) {
	var doc any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return doc, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(b []byte) (any, error) { return Decode(bytes.NewReader(b)) }
