package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	alerts "tourops-console/internal/alerts/domain"
	teams "tourops-console/internal/teams/domain"
	"tourops-console/internal/views"
)

var alertCSVHeader = []string{
	"ID", "Type", "Status", "Priority", "Tourist", "Phone",
	"Location", "Assigned Team", "Summary", "Timestamp",
}

// BuildAlertsCSV renders the alert collection as a CSV export, one row
// per alert in collection order.
func BuildAlertsCSV(items []alerts.Alert) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(alertCSVHeader); err != nil {
		return nil, err
	}
	for _, a := range items {
		row := []string{
			a.ID, a.Type, a.Status, a.Priority, a.TouristName, a.Phone,
			a.Location, a.AssignedTeam, a.Summary, a.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAlertsXLSX renders the alert collection as a workbook with a
// summary sheet and one row per alert.
func BuildAlertsXLSX(items []alerts.Alert) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	alertsSheet := "alerts"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(alertsSheet); err != nil {
		return nil, err
	}

	counters := views.CountAlerts(items)
	_ = f.SetCellValue(summarySheet, "A1", "Incident Export")
	_ = f.SetCellValue(summarySheet, "A3", "Total")
	_ = f.SetCellValue(summarySheet, "B3", counters.Total)
	_ = f.SetCellValue(summarySheet, "A4", "Active")
	_ = f.SetCellValue(summarySheet, "B4", counters.Active)
	_ = f.SetCellValue(summarySheet, "A5", "Responding")
	_ = f.SetCellValue(summarySheet, "B5", counters.Responding)
	_ = f.SetCellValue(summarySheet, "A6", "Resolved")
	_ = f.SetCellValue(summarySheet, "B6", counters.Resolved)
	_ = f.SetCellValue(summarySheet, "A7", "Exported")
	_ = f.SetCellValue(summarySheet, "B7", time.Now().Format(time.RFC3339))

	for col, name := range alertCSVHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(alertsSheet, cell, name)
	}
	for i, a := range items {
		row := i + 2
		values := []any{
			a.ID, a.Type, a.Status, a.Priority, a.TouristName, a.Phone,
			a.Location, a.AssignedTeam, a.Summary, a.Timestamp.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(alertsSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildIncidentSummaryPDF renders a one-page situation summary covering
// the headline counters and the live emergency shortlist.
func BuildIncidentSummaryPDF(alertItems []alerts.Alert, teamItems []teams.Team) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Incident Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC3339)))
	pdf.Ln(8)

	desk := views.CountDesk(alertItems, teamItems)
	pdf.Cell(0, 6, fmt.Sprintf("Active Emergencies: %d", desk.ActiveEmergencies))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Teams: %d (%d available, %d responding)", desk.TeamCount, desk.AvailableTeams, desk.RespondingTeams))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Avg Response Time: %.1f min", desk.AvgResponseMinutes))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(25, 6, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Priority", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Assigned Team", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, a := range views.LiveEmergencies(alertItems, 0) {
		pdf.CellFormat(25, 6, a.ID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, a.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, a.Priority, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, a.Location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, a.AssignedTeam, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
