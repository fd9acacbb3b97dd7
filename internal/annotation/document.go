// Package annotation provides annotation document handling and persistence.
package annotation

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"dicom-measure/internal/measure"
)

// CurrentVersion is the annotation document format version.
const CurrentVersion = 1

// Document is a saved annotation session: the full measurement state for
// one image, plus references to the files it was created against.
type Document struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Source file references (informational; the engine never opens them).
	ImagePath string `json:"image,omitempty"`
	DicomPath string `json:"dicom,omitempty"`

	// State is the whole measurement-manager state.
	State *measure.Manager `json:"state"`
}

// New creates a document wrapping the given manager.
func New(mgr *measure.Manager) *Document {
	now := time.Now()
	return &Document{
		Version:  CurrentVersion,
		Created:  now,
		Modified: now,
		State:    mgr,
	}
}

// Load loads an annotation document from a file. Malformed input fails
// as a whole; no partial document is returned.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse annotation file %s: %w", path, err)
	}
	if doc.State == nil {
		return nil, fmt.Errorf("annotation file %s: %w: missing state", path, measure.ErrMalformed)
	}

	return &doc, nil
}

// Save writes the document to a file, updating the modified timestamp.
func (d *Document) Save(path string) error {
	d.Modified = time.Now()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
