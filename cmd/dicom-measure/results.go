package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dicom-measure/internal/annotation"
	dcm "dicom-measure/internal/dicom"
	"dicom-measure/internal/measure"
)

var resultsDicomPath string

var resultsCmd = &cobra.Command{
	Use:   "results [annotations]",
	Short: "Evaluate a saved annotation document",
	Long: `Load an annotation document and print every measurement with its value.
Values use the calibration stored in the document; pass --dicom to
re-evaluate under the pixel spacing of a DICOM file instead.`,
	Args: cobra.ExactArgs(1),
	Run:  runResults,
}

func init() {
	resultsCmd.Flags().StringVar(&resultsDicomPath, "dicom", "",
		"DICOM file whose pixel spacing overrides the stored calibration")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) {
	doc, err := annotation.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotations: %v\n", err)
		os.Exit(1)
	}

	mgr := doc.State
	cal := mgr.Calibration()
	if resultsDicomPath != "" {
		md, err := dcm.ReadFile(resultsDicomPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading DICOM file: %v\n", err)
			os.Exit(1)
		}
		cal = md.Calibration()
	}

	if cal.Calibrated() {
		fmt.Printf("Calibration: %v %s/px\n\n", cal.PixelSpacing, cal.UnitsOrDefault())
	} else {
		fmt.Printf("Calibration: none (pixel values)\n\n")
	}

	if mgr.Len() == 0 {
		fmt.Println("No measurements")
		return
	}

	for _, m := range mgr.Measurements() {
		res := m.Compute(cal)
		printResult(m, res)
	}
}

func printResult(m measure.Measurement, res measure.Result) {
	name := m.Kind.String()
	if m.Label != "" {
		name = fmt.Sprintf("%s (%s)", m.Label, m.Kind)
	}

	fmt.Printf("%s [%s]\n", name, m.ID)
	fmt.Printf("  value: %s\n", res.DisplayText)
	fmt.Printf("  pixels: %.4f\n", res.PixelValue)
	if res.RealWorldValue != nil {
		fmt.Printf("  real-world: %.4f\n", *res.RealWorldValue)
	}
	for key, v := range res.Extra {
		fmt.Printf("  %s: %.4f\n", key, v)
	}
	fmt.Printf("  points: %d, created %s\n\n",
		len(m.Points), m.CreatedAt.Format("2006-01-02 15:04:05"))
}
