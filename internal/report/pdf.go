package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/neurascan/neurascan-api/internal/pipeline"
)

// Input carries everything one report needs; the generator has no other
// dependencies.
type Input struct {
	PatientName  string
	PatientEmail string
	Prediction   pipeline.Prediction
	Labels       pipeline.LabelTable
	ModelVersion string
	GeneratedAt  time.Time
}

// Generate renders the analysis report as a PDF document.
func Generate(in Input) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Medical AI Analysis Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "Model: "+in.ModelVersion, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	heading := func(text string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	heading("Patient Information")
	infoRow(pdf, "Patient Name:", in.PatientName)
	infoRow(pdf, "Email:", in.PatientEmail)
	infoRow(pdf, "Analysis Date:", in.GeneratedAt.Format("January 2, 2006 at 3:04 PM"))
	pdf.Ln(4)

	heading("Analysis Results")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 7, "Primary Diagnosis:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, in.Prediction.FullName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 7, "Confidence Level:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%.1f%%", in.Prediction.PrimaryConfidence), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.MultiCell(0, 6, "Description: "+in.Prediction.Description, "", "L", false)
	pdf.Ln(4)

	heading("Detailed Confidence Scores")
	pdf.SetFillColor(55, 65, 81)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Condition", "1", 0, "C", true, 0, "")
	pdf.CellFormat(90, 8, "Confidence", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	for _, class := range in.Labels.Classes {
		pct := in.Prediction.Confidence[class.ConfidenceKey]
		pdf.CellFormat(90, 8, class.FullName, "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 8, fmt.Sprintf("%.1f%%", pct), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	heading("Medical Recommendations")
	pdf.MultiCell(0, 6, in.Prediction.Recommendation, "", "L", false)
	pdf.Ln(4)

	heading("Important Disclaimer")
	pdf.MultiCell(0, 6, pipeline.Disclaimer, "", "L", false)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "Report Generated: "+in.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Generated by Medical AI Analysis System", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func infoRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(243, 244, 246)
	pdf.CellFormat(50, 8, label, "1", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(120, 8, value, "1", 1, "L", false, 0, "")
}
