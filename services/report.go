package services

import (
	"fmt"
	"time"

	"attendtrack_go/models"
	"attendtrack_go/utils"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ExportRow is one line of the downloadable report: one row per period.
type ExportRow struct {
	Teacher  string
	Level    string
	Section  string
	CheckIn  time.Time
	CheckOut time.Time
}

// ReportArchiver uploads a finished artifact somewhere durable. Optional.
type ReportArchiver interface {
	ArchiveReport(fileName string, data []byte) (string, error)
}

// ReportExporter materializes a date-range filtered result set into an
// xlsx artifact. Free-text filters are a screen-local refinement and are
// deliberately not applied here.
type ReportExporter struct {
	Source  RecordSource
	Archive ReportArchiver
}

func NewReportExporter(src RecordSource) *ReportExporter {
	return &ReportExporter{Source: src}
}

// BuildExportRows filters records by calendar-day range and flattens every
// period into its own row, in record then sequence order.
func BuildExportRows(records []models.AttendanceRecord, start, end time.Time) []ExportRow {
	inRange := DateBetween(start, end)
	rows := make([]ExportRow, 0, len(records))
	for _, rec := range records {
		if !inRange(ReportRow{Date: rec.Date}) {
			continue
		}
		for _, p := range rec.Periods {
			rows = append(rows, ExportRow{
				Teacher:  p.TeacherName,
				Level:    rec.Level.Name,
				Section:  rec.Section.Name,
				CheckIn:  p.CheckInTime,
				CheckOut: p.CheckOutTime,
			})
		}
	}
	return rows
}

// Export fetches, filters by date range and serializes the matching rows.
// A fetch failure aborts the export; no partial file is produced.
func (e *ReportExporter) Export(start, end time.Time) ([]byte, error) {
	records, err := e.Source.ListAll()
	if err != nil {
		return nil, fmt.Errorf("fetch attendance for export: %w", err)
	}

	rows := BuildExportRows(records, start, end)
	data, err := writeWorkbook(rows)
	if err != nil {
		return nil, err
	}

	if e.Archive != nil {
		fileName := exportFileName(start, end)
		if key, aerr := e.Archive.ArchiveReport(fileName, data); aerr != nil {
			logrus.WithError(aerr).Warn("Failed to archive attendance report")
		} else {
			logrus.WithField("key", key).Info("Attendance report archived")
		}
	}
	return data, nil
}

func writeWorkbook(rows []ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"S.No", "Teacher", "Level", "Section", "Check-In", "Check-Out"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			i + 1,
			row.Teacher,
			row.Level,
			row.Section,
			row.CheckIn.Format("2006-01-02 15:04"),
			row.CheckOut.Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func exportFileName(start, end time.Time) string {
	s := utils.TruncateToDay(start).Format("2006-01-02")
	e := utils.TruncateToDay(end).Format("2006-01-02")
	return fmt.Sprintf("attendance_report_%s_%s.xlsx", s, e)
}
