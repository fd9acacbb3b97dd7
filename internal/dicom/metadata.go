// Package dicom adapts DICOM file metadata to the measurement engine.
// It extracts the attributes the viewer needs — identification fields and
// the pixel-spacing calibration — and never touches pixel data itself.
package dicom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"dicom-measure/internal/measure"
)

// Metadata holds the core attributes extracted from a DICOM file.
// Absent attributes are left at their zero value.
type Metadata struct {
	PatientName       string
	PatientID         string
	StudyDate         string
	Modality          string
	StudyDescription  string
	SeriesDescription string
	InstanceNumber    int
	SeriesNumber      int
	StudyInstanceUID  string
	SeriesInstanceUID string
	SOPInstanceUID    string

	// ImagePosition is the Image Position (Patient) attribute (x, y, z).
	ImagePosition []float64

	// PixelSpacing is physical distance per pixel (row, column), in mm.
	PixelSpacing   []float64
	SliceLocation  float64
	SliceThickness float64
}

// ReadFile extracts metadata from a DICOM file. Pixel data is skipped;
// this path is cheap enough for directory scanning.
func ReadFile(path string) (Metadata, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return Metadata{}, fmt.Errorf("parse DICOM file %s: %w", path, err)
	}
	return FromDataset(&ds), nil
}

// FromDataset extracts metadata from an already-parsed dataset.
func FromDataset(ds *dicom.Dataset) Metadata {
	md := Metadata{
		PatientName:       elementString(ds, tag.PatientName),
		PatientID:         elementString(ds, tag.PatientID),
		StudyDate:         elementString(ds, tag.StudyDate),
		Modality:          elementString(ds, tag.Modality),
		StudyDescription:  elementString(ds, tag.StudyDescription),
		SeriesDescription: elementString(ds, tag.SeriesDescription),
		StudyInstanceUID:  elementString(ds, tag.StudyInstanceUID),
		SeriesInstanceUID: elementString(ds, tag.SeriesInstanceUID),
		SOPInstanceUID:    elementString(ds, tag.SOPInstanceUID),
	}

	md.InstanceNumber = parseInt(elementString(ds, tag.InstanceNumber))
	md.SeriesNumber = parseInt(elementString(ds, tag.SeriesNumber))

	md.ImagePosition = ParseFloats(elementStrings(ds, tag.ImagePositionPatient))
	md.PixelSpacing = ParseFloats(elementStrings(ds, tag.PixelSpacing))
	md.SliceLocation = parseFloat(elementString(ds, tag.SliceLocation))
	md.SliceThickness = parseFloat(elementString(ds, tag.SliceThickness))

	return md
}

// Calibration derives the measurement calibration from the metadata.
// DICOM PixelSpacing is specified in millimetres; files without the
// attribute yield an uncalibrated result.
func (md Metadata) Calibration() measure.Calibration {
	return measure.Calibration{
		PixelSpacing: md.PixelSpacing,
		Units:        measure.DefaultUnits,
	}
}

// ParseFloats converts decimal-string attribute values to floats,
// skipping entries that fail to parse. A backslash-delimited single
// string (the raw DICOM multi-value encoding) is split first.
func ParseFloats(values []string) []float64 {
	var out []float64
	for _, v := range values {
		for _, part := range strings.Split(v, `\`) {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// elementStrings returns an attribute's values as strings, or nil if the
// attribute is absent or not string-valued.
func elementStrings(ds *dicom.Dataset, t tag.Tag) []string {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil
	}
	values, ok := el.Value.GetValue().([]string)
	if !ok {
		return nil
	}
	return values
}

// elementString returns an attribute's first value as a string.
func elementString(ds *dicom.Dataset, t tag.Tag) string {
	values := elementStrings(ds, t)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
