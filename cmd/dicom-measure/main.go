// Command dicom-measure inspects DICOM files and annotation documents
// from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dicom-measure/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dicom-measure",
	Short: "Inspect DICOM files and measurement annotations",
	Long: `dicom-measure is the command-line companion to the measurement viewer.
It dumps DICOM metadata, evaluates saved measurement annotations under
their calibration, and renders annotation overlays to image files.`,
	Version: version.String(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
