// Package export renders reports into downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
	"github.com/DipuTony/trulyhelp-portal/internal/donation"
	"github.com/DipuTony/trulyhelp-portal/internal/reports"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// columns is the fixed tabular layout shared by every format. Accountants
// reconcile these files against bank statements, so the order never changes
// between formats or releases.
var columns = []string{
	"Donation ID", "Donor Name", "Donor Email", "Donor Phone", "Amount",
	"Date", "Payment Method", "Payment Status", "Donation Type", "Donor Type",
	"Cause", "City", "State", "Country", "Transaction ID",
	"Volunteer Name", "Volunteer Email", "Receipt link",
}

// Engine renders a report's donation rows in the requested format.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Export renders rep and returns the file bytes, a timestamped filename and
// the content type. The report itself is untouched; a failed export leaves
// it re-exportable as-is.
func (e *Engine) Export(rep *reports.Report, format string) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(rep)
		if err != nil {
			return nil, "", "", &common.ExportError{Op: "csv", Err: err}
		}
		return data, fmt.Sprintf("donation_report_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportExcel(rep)
		if err != nil {
			return nil, "", "", &common.ExportError{Op: "excel", Err: err}
		}
		return data, fmt.Sprintf("donation_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(rep)
		if err != nil {
			return nil, "", "", &common.ExportError{Op: "pdf", Err: err}
		}
		return data, fmt.Sprintf("donation_report_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", &common.ValidationError{Field: "format", Message: "unsupported export format: " + format}
	}
}

// rowOf flattens a donation into the shared column order.
func rowOf(d donation.Donation) []string {
	volName, volEmail := "", ""
	if d.CollectedBy != nil {
		volName = d.CollectedBy.Name
		volEmail = d.CollectedBy.Email
	}
	return []string{
		d.DonationID,
		d.Donor.Name,
		d.Donor.Email,
		d.Donor.Phone,
		fmt.Sprintf("%.2f", d.Amount),
		d.CreatedAt.Format("2006-01-02 15:04:05"),
		string(d.Method),
		string(d.PaymentStatus),
		d.DonationType,
		d.DonorType,
		d.Cause,
		d.City,
		d.State,
		d.Country,
		d.TransactionID,
		volName,
		volEmail,
		d.ReceiptURL,
	}
}

func (e *Engine) exportCSV(rep *reports.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, d := range rep.Donations {
		if err := w.Write(rowOf(d)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Engine) exportExcel(rep *reports.Report) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Donations"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, d := range rep.Donations {
		for cIdx, v := range rowOf(d) {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	summaryRow := len(rep.Donations) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total Donations")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), rep.TotalCount)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "Total Amount")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), fmt.Sprintf("%.2f", rep.TotalAmount))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+2), "Average Amount")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+2), fmt.Sprintf("%.2f", rep.AverageAmount))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pdfColumns is the narrower set that fits a landscape A4 page. The full
// column set stays available in CSV and Excel.
var pdfColumns = []struct {
	header string
	width  float64
	index  int // position in the shared row
}{
	{"Donation ID", 32, 0},
	{"Donor Name", 40, 1},
	{"Amount", 24, 4},
	{"Date", 36, 5},
	{"Method", 26, 6},
	{"Status", 26, 7},
	{"Cause", 40, 10},
	{"Volunteer", 40, 15},
}

func (e *Engine) exportPDF(rep *reports.Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Donation Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, c.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, d := range rep.Donations {
		row := rowOf(d)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, row[c.index], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 7, fmt.Sprintf("Total: %d donations", rep.TotalCount))
	pdf.Cell(60, 7, fmt.Sprintf("Amount: %.2f", rep.TotalAmount))
	pdf.Cell(60, 7, fmt.Sprintf("Average: %.2f", rep.AverageAmount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
