package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dcm "dicom-measure/internal/dicom"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display metadata from a DICOM file",
	Long:  "Show patient, study, and series attributes plus the pixel-spacing calibration.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	path := args[0]

	md, err := dcm.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading DICOM file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("DICOM File Information")
	fmt.Println("======================")
	fmt.Printf("File: %s\n\n", path)

	fmt.Println("Patient:")
	fmt.Printf("  Name: %s\n", orUnknown(md.PatientName))
	fmt.Printf("  ID: %s\n\n", orUnknown(md.PatientID))

	fmt.Println("Study:")
	fmt.Printf("  Date: %s\n", orUnknown(md.StudyDate))
	fmt.Printf("  Modality: %s\n", orUnknown(md.Modality))
	fmt.Printf("  Description: %s\n", orUnknown(md.StudyDescription))
	fmt.Printf("  Instance UID: %s\n\n", orUnknown(md.StudyInstanceUID))

	fmt.Println("Series:")
	fmt.Printf("  Number: %d\n", md.SeriesNumber)
	fmt.Printf("  Description: %s\n", orUnknown(md.SeriesDescription))
	fmt.Printf("  Instance UID: %s\n\n", orUnknown(md.SeriesInstanceUID))

	fmt.Println("Image:")
	fmt.Printf("  Instance number: %d\n", md.InstanceNumber)
	if len(md.ImagePosition) == 3 {
		fmt.Printf("  Position: (%.3f, %.3f, %.3f)\n",
			md.ImagePosition[0], md.ImagePosition[1], md.ImagePosition[2])
	}
	if md.SliceLocation != 0 {
		fmt.Printf("  Slice location: %.3f\n", md.SliceLocation)
	}
	if md.SliceThickness != 0 {
		fmt.Printf("  Slice thickness: %.3f mm\n", md.SliceThickness)
	}

	cal := md.Calibration()
	if cal.Calibrated() {
		fmt.Printf("  Pixel spacing: %v %s/px\n", cal.PixelSpacing, cal.UnitsOrDefault())
	} else {
		fmt.Println("  Pixel spacing: absent (measurements stay in pixels)")
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
