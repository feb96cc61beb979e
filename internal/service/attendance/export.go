package attendance

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet   = "Attendance"
	maxExportRows = 50000
)

var exportHeaders = []string{
	"Work Date", "Worker", "Worker ID", "Base", "Job", "Status",
	"Check-in Time", "Proxy", "Sponsor ID", "Offline Sync",
}

// ExportRecords implements attendance.AttendanceService.
// Pagination fields of the filter are ignored; sorting is honoured.
func (s *AttendanceServiceImpl) ExportRecords(ctx context.Context, filter attendance.RecordFilter) (*bytes.Buffer, string, error) {
	if err := filter.Validate(); err != nil {
		return nil, "", err
	}

	var records []attendance.SignupRecord
	scope, ok, err := s.narrowScope(ctx, filter.BaseID)
	if err != nil {
		return nil, "", err
	}
	if ok {
		records, err = s.SignupRepository.ListForExport(ctx, filter, scope, maxExportRows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list records for export: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", attendance.ErrExportFailed, err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		name, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, name, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle)
	f.SetColWidth(exportSheet, "A", "A", 12)
	f.SetColWidth(exportSheet, "B", "F", 20)
	f.SetColWidth(exportSheet, "G", "G", 24)
	f.SetColWidth(exportSheet, "H", "J", 14)

	loc := s.calendar.Location()
	for i, r := range records {
		row := i + 2
		checkin := ""
		if r.CheckinTime != nil {
			checkin = r.CheckinTime.In(loc).Format("2006-01-02 15:04:05")
		}
		sponsor := ""
		if r.ProxySponsorID != nil {
			sponsor = *r.ProxySponsorID
		}

		values := []any{
			utils.FormatDate(r.WorkDate),
			deref(r.WorkerName),
			r.WorkerID,
			deref(r.BaseName),
			deref(r.JobTitle),
			string(r.Status),
			checkin,
			yesNo(r.IsProxy),
			sponsor,
			yesNo(r.IsOfflineSync),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheet, start, &values); err != nil {
			slog.Error("failed to write export row", "row", row, "error", err)
			return nil, "", attendance.ErrExportFailed
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		slog.Error("failed to write export workbook", "error", err)
		return nil, "", attendance.ErrExportFailed
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", s.now().In(loc).Format("20060102_150405"))
	return buf, filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
