package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// newScanCmd creates the `medclaw scan` command for label photos.
func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Read a medication label from a photo",
		Long: `Transcribes a photo of a medication label and extracts the
medication name, dosage, frequency, prescriber and pharmacy. Low-confidence
results are flagged for manual review.

Supported formats: JPEG, PNG, WebP.

Examples:
  medclaw scan label.jpg
  medclaw scan label.png --raw`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Bool("raw", false, "also print the raw transcription")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildAssistant(cmd)
	if err != nil {
		return err
	}
	if err := requireKey(a); err != nil {
		return err
	}

	path := args[0]
	mimeType, err := imageMIMEType(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	scan, err := a.ScanLabel(cmd.Context(), base64.StdEncoding.EncodeToString(data), mimeType)
	if err != nil {
		return err
	}

	label := scan.Data
	fmt.Printf("Medication:  %s\n", label.Name)
	fmt.Printf("Dosage:      %s\n", label.Dosage)
	fmt.Printf("Frequency:   %s\n", label.Frequency)
	fmt.Printf("Prescriber:  %s\n", label.Prescriber)
	fmt.Printf("Pharmacy:    %s\n", label.Pharmacy)
	fmt.Printf("Confidence:  %.0f%%\n", label.Confidence*100)
	if label.NeedsReview {
		fmt.Println()
		fmt.Println("Low confidence: please verify these details against the label.")
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		fmt.Println()
		fmt.Println("--- transcription ---")
		fmt.Println(scan.RawText)
	}
	return nil
}

// imageMIMEType maps the file extension to a MIME type the API accepts.
func imageMIMEType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".webp":
		return "image/webp", nil
	default:
		return "", fmt.Errorf("unsupported image type %q (use jpg, png or webp)", filepath.Ext(path))
	}
}
