package Controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"FleetGuard/Models"
	"FleetGuard/Storage"
)

// ExcelController exports the damage-report log as a workbook for the shop
// office.
type ExcelController struct {
	Store *Storage.Gateway
}

func NewExcelController(store *Storage.Gateway) *ExcelController {
	return &ExcelController{Store: store}
}

// ExportReports builds and downloads an .xlsx of all damage reports.
func (e *ExcelController) ExportReports(ctx *fiber.Ctx) error {
	reports := e.Store.FetchReports()
	units := make(map[string]Models.Unit)
	for _, u := range e.Store.CachedUnits() {
		units[u.ID] = u
	}

	f := excelize.NewFile()
	sheetName := "Damage Reports"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create workbook"})
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Report ID", "Unit", "Unit Model", "Filed", "Reported By", "Priority", "Status", "Description", "Suggested Parts", "Approved By", "Resolved At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheetName, "A1", lastCell, headerStyle)
	}

	for row, report := range reports {
		unitName := report.UnitID
		unitModel := ""
		if unit, ok := units[report.UnitID]; ok {
			unitName = unit.Name
			unitModel = unit.Model
		}
		resolvedAt := ""
		if report.ResolvedAt != nil {
			resolvedAt = report.ResolvedAt.Format("2006-01-02 15:04")
		}
		values := []interface{}{
			report.ID,
			unitName,
			unitModel,
			report.Timestamp.Format("2006-01-02 15:04"),
			report.ReportedBy,
			string(report.Priority),
			string(report.Status),
			report.Description,
			strings.Join(Models.StringsFromJSON(report.SuggestedParts), ", "),
			report.ApprovedBy,
			resolvedAt,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	filename := filepath.Join(os.TempDir(), fmt.Sprintf("damage_reports_%d.xlsx", time.Now().Unix()))
	if err := f.SaveAs(filename); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save workbook"})
	}
	return ctx.SendFile(filename, true)
}
