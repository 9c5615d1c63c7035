package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	prediction "inspection-cloud/internal/prediction/domain"
)

// BuildHistoryPDF renders a minimal PDF for an inspection's assessment history.
func BuildHistoryPDF(inspectionID int64, items []prediction.Assessment) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Failure Prediction History")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Inspection: %d", inspectionID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Assessments: %d", len(items)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Recorded", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "PoF (%)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "CoF", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Risk Score", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Confidence", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Priority", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Model", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range items {
		pdf.CellFormat(45, 6, item.Reading.RecordedAt.Format(time.RFC3339), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", item.Prediction.ProbabilityOfFailure), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, string(item.Prediction.ConsequenceOfFailure), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", item.Prediction.RiskScore), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", item.Prediction.ConfidenceScore), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, string(item.Prediction.Priority), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, item.Prediction.ModelVersion, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildHistoryXLSX renders a minimal XLSX for an inspection's assessment history.
func BuildHistoryXLSX(inspectionID int64, items []prediction.Assessment) ([]byte, error) {
	f := excelize.NewFile()
	readingsSheet := "readings"
	predictionsSheet := "predictions"
	f.SetSheetName("Sheet1", predictionsSheet)
	f.NewSheet(readingsSheet)

	_ = f.SetCellValue(predictionsSheet, "A1", "Recorded")
	_ = f.SetCellValue(predictionsSheet, "B1", "PoF (%)")
	_ = f.SetCellValue(predictionsSheet, "C1", "CoF")
	_ = f.SetCellValue(predictionsSheet, "D1", "Confidence")
	_ = f.SetCellValue(predictionsSheet, "E1", "Risk Score")
	_ = f.SetCellValue(predictionsSheet, "F1", "Priority")
	_ = f.SetCellValue(predictionsSheet, "G1", "Recommended Action")
	_ = f.SetCellValue(predictionsSheet, "H1", "Model")

	_ = f.SetCellValue(readingsSheet, "A1", "Recorded")
	_ = f.SetCellValue(readingsSheet, "B1", "Pressure (bar)")
	_ = f.SetCellValue(readingsSheet, "C1", "Temperature (C)")
	_ = f.SetCellValue(readingsSheet, "D1", "Wall Thickness (mm)")
	_ = f.SetCellValue(readingsSheet, "E1", "Corrosion Rate (mm/yr)")
	_ = f.SetCellValue(readingsSheet, "F1", "Vibration (mm/s)")
	_ = f.SetCellValue(readingsSheet, "G1", "Flow Rate (m3/h)")
	_ = f.SetCellValue(readingsSheet, "H1", "Notes")

	for i, item := range items {
		row := i + 2
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("A%d", row), item.Reading.RecordedAt.Format(time.RFC3339))
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("B%d", row), item.Prediction.ProbabilityOfFailure)
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("C%d", row), string(item.Prediction.ConsequenceOfFailure))
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("D%d", row), item.Prediction.ConfidenceScore)
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("E%d", row), item.Prediction.RiskScore)
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("F%d", row), string(item.Prediction.Priority))
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("G%d", row), item.Prediction.RecommendedAction)
		_ = f.SetCellValue(predictionsSheet, fmt.Sprintf("H%d", row), item.Prediction.ModelVersion)

		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("A%d", row), item.Reading.RecordedAt.Format(time.RFC3339))
		setOptionalCell(f, readingsSheet, fmt.Sprintf("B%d", row), item.Reading.Pressure)
		setOptionalCell(f, readingsSheet, fmt.Sprintf("C%d", row), item.Reading.Temperature)
		setOptionalCell(f, readingsSheet, fmt.Sprintf("D%d", row), item.Reading.WallThickness)
		setOptionalCell(f, readingsSheet, fmt.Sprintf("E%d", row), item.Reading.CorrosionRate)
		setOptionalCell(f, readingsSheet, fmt.Sprintf("F%d", row), item.Reading.Vibration)
		setOptionalCell(f, readingsSheet, fmt.Sprintf("G%d", row), item.Reading.FlowRate)
		_ = f.SetCellValue(readingsSheet, fmt.Sprintf("H%d", row), item.Reading.Notes)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setOptionalCell(f *excelize.File, sheet, cell string, value *float64) {
	if value == nil {
		return
	}
	_ = f.SetCellValue(sheet, cell, *value)
}
