// Package report renders a patient-facing PDF health report from the latest
// health record.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	apperrors "github.com/carelink-ai/carelink/internal/errors"
	"github.com/carelink-ai/carelink/internal/records"
)

// Service generates health reports
type Service struct {
	logger *zap.Logger
}

// NewService creates a report service
func NewService(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Generate renders the record into a one-page PDF and returns the bytes
func (s *Service) Generate(rec *records.HealthRecord) ([]byte, error) {
	if rec == nil {
		return nil, apperrors.New(apperrors.ErrNotFound.Code, "no health record to report on")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "CareLink Health Report")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", time.Now().Format("Jan 2, 2006 3:04 PM")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Reading taken: %s", rec.Timestamp.Format("Jan 2, 2006 3:04 PM")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Record ID: %s", rec.ID))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 9, "Vital Signs")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	v := rec.Vitals
	vitals := []struct{ label, value string }{
		{"Heart rate", v.HeartRate + " bpm"},
		{"Blood pressure", v.Systolic + "/" + v.Diastolic + " mmHg"},
		{"Oxygen saturation", v.OxygenSat + "%"},
		{"Temperature", v.Temperature},
	}
	if v.RespiratoryRate != "" {
		vitals = append(vitals, struct{ label, value string }{"Respiratory rate", v.RespiratoryRate + " breaths/min"})
	}
	for _, row := range vitals {
		pdf.Cell(50, 7, row.label)
		pdf.Cell(0, 7, row.value)
		pdf.Ln(7)
	}

	if rec.Notes != "" {
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 9, "Notes")
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, rec.Notes, "", "L", false)
	}

	if rec.Assessment != nil {
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 9, "AI Assessment")
		pdf.Ln(10)

		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, fmt.Sprintf("Severity: %s", strings.ToUpper(rec.Assessment.Severity)))
		pdf.Ln(7)
		if rec.Assessment.Emergency {
			pdf.SetTextColor(200, 0, 0)
			pdf.Cell(0, 7, "EMERGENCY - seek immediate medical attention")
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(7)
		}

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, rec.Assessment.Response, "", "L", false)

		if len(rec.Assessment.Recommendations) > 0 {
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 7, "Recommendations")
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "", 11)
			for _, r := range rec.Assessment.Recommendations {
				pdf.MultiCell(0, 6, "- "+r, "", "L", false)
			}
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "This report was generated by an AI assistant and is not a medical diagnosis. Share it with a healthcare professional.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("Failed to render report PDF", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, "failed to render report")
	}

	return buf.Bytes(), nil
}
