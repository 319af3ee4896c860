package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"hrms/internal/presence"
	"hrms/internal/training"
)

// AttendanceSheet renders a training's presence grid as an XLSX workbook:
// one row per roster member, one column per session day.
func AttendanceSheet(t training.Training, sheet presence.Sheet, roster []training.Participant) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Attendance"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	lastCol, _ := excelize.ColumnNumberToName(2 + len(sheet.Dates))
	f.SetCellValue(sheetName, "A1", "ATTENDANCE SHEET — "+t.Theme)
	f.MergeCell(sheetName, "A1", lastCol+"1")
	f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)
	f.SetRowHeight(sheetName, 1, 25)

	f.SetCellValue(sheetName, "A2", "Location:")
	f.SetCellValue(sheetName, "B2", t.Location)
	f.SetCellValue(sheetName, "A3", "Dates:")
	f.SetCellValue(sheetName, "B3", fmt.Sprintf("%s to %s",
		t.StartDate.Format(presence.DayLayout), t.EndDate.Format(presence.DayLayout)))

	// Grid header
	const headerRow = 5
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", headerRow), "CIN")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", headerRow), "Name")
	for i, d := range sheet.Dates {
		col, _ := excelize.ColumnNumberToName(3 + i)
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, headerRow), d)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), headerStyle)

	byID := make(map[string]training.Participant, len(roster))
	for _, p := range roster {
		byID[p.EmployeeID] = p
	}
	for i, row := range sheet.Rows {
		r := headerRow + 1 + i
		p := byID[row.EmployeeID]
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), p.CIN)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), p.FirstName+" "+p.LastName)
		for j, d := range sheet.Dates {
			col, _ := excelize.ColumnNumberToName(3 + j)
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, r), row.Days[d])
		}
	}

	f.SetColWidth(sheetName, "A", "B", 22)
	return f, nil
}
