package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/fwsplit/internal/common"
	"example.com/fwsplit/internal/manifest"
)

// Options control document metadata for the rendered report.
type Options struct {
	Title  string
	Author string
}

// SaveManifestPDF renders the given firmware manifest into a PDF document
// with a summary, a per-part table and a QR code of the manifest digest.
func SaveManifestPDF(m manifest.Manifest, opts Options, out string) error {
	title := opts.Title
	if title == "" {
		title = "Firmware Manifest"
	}
	author := opts.Author
	if author == "" {
		author = "fwreport"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetAuthor(author, false)
	pdf.SetCreator("fwreport", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, title)
	addSummarySection(pdf, m)
	addPartsSection(pdf, m.Items)
	if err := addDigestSection(pdf, m); err != nil {
		return err
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, m manifest.Manifest) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	var total int64
	for _, item := range m.Items {
		total += item.Size
	}
	items := []struct {
		label string
		value string
	}{
		{label: "Created", value: m.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
		{label: "Image", value: emptyFallback(m.Image, "-")},
		{label: "Image Size", value: sizeLabel(m.ImageSize)},
		{label: "Parts", value: fmt.Sprintf("%d", len(m.Items))},
		{label: "Parts Total", value: sizeLabel(total)},
		{label: "Algorithm", value: m.Algorithm},
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addPartsSection(pdf *gofpdf.Fpdf, items []manifest.Item) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Parts")
	pdf.Ln(9)

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No part files recorded.", "", "L", false)
		return
	}

	headers := []string{"Name", "Offset", "Size", "Digest"}
	widths := []float64{36, 24, 28, 92}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, item := range items {
		values := []string{
			item.Name,
			fmt.Sprintf("0x%x", item.Offset),
			sizeLabel(item.Size),
			item.Digest.Encoded(),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func addDigestSection(pdf *gofpdf.Fpdf, m manifest.Manifest) error {
	sum, err := m.Sum()
	if err != nil {
		return fmt.Errorf("manifest digest: %w", err)
	}
	png, err := DigestQR(sum, 256)
	if err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Manifest Digest")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, sum.String(), "", "L", false)
	pdf.Ln(2)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("manifest-digest-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("manifest-digest-qr", pdf.GetX(), pdf.GetY(), 36, 36, false, opts, 0, "")
	pdf.Ln(40)
	return nil
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func sizeLabel(n int64) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d (%s)", n, common.FormatBytes(n))
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
