package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/shuleboard/core"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	Formats = []string{FormatJSON, FormatCSV, FormatXLSX}

	contentTypes = map[string]string{
		FormatJSON: "application/json",
		FormatCSV:  "text/csv",
		FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
)

// ContentType returns the MIME type of `format`, empty for unknown formats.
func ContentType(format string) string {
	return contentTypes[format]
}

// Filename is the download name of the exported report.
func Filename(r Report, format string) string {
	return fmt.Sprintf("%s-report-%s.%s", r.Type, r.GeneratedAt.Format("20060102-150405"), format)
}

// Export writes `r` to `w` in the given format.
func Export(w io.Writer, r Report, format string) error {
	switch core.CleanString(format, true /* lower */) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(r), "encoding json report")
	case FormatCSV:
		return exportCSV(w, r)
	case FormatXLSX:
		return exportXLSX(w, r)
	}
	return core.NewValidationError(
		fmt.Errorf("unknown export format %q", format),
		core.FieldError{Field: "format", Error: fmt.Sprintf("format must be one of %v", Formats)},
	)
}

// ExportLast writes the last generated report.
func (svc *Service) ExportLast(w io.Writer, format string) error {
	r, err := svc.Last()
	if err != nil {
		return err
	}
	if err := Export(w, r, format); err != nil {
		if !core.IsValidation(err) {
			svc.logger.Error("report export failed", err, map[string]interface{}{"id": r.ID, "format": format})
		}
		return err
	}
	return nil
}

// exportCSV writes the summary block, a blank line, then the data table.
func exportCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	rows := append(r.Summary(), []string{})
	header, data := r.Table()
	rows = append(rows, header)
	rows = append(rows, data...)
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "writing csv report")
	}
	return nil
}

const (
	summarySheet = "Summary"
	dataSheet    = "Data"
)

func exportXLSX(w io.Writer, r Report) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing workbook")
		}
	}()

	if err = f.SetSheetName("Sheet1", summarySheet); err != nil {
		return errors.Wrap(err, "renaming summary sheet")
	}
	if _, err = f.NewSheet(dataSheet); err != nil {
		return errors.Wrap(err, "creating data sheet")
	}
	if err = writeRows(f, summarySheet, r.Summary()); err != nil {
		return err
	}
	header, data := r.Table()
	if err = writeRows(f, dataSheet, append([][]string{header}, data...)); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+1)
		}
	}
	return nil
}

// Summary returns the report header & stats as key/value rows.
func (r Report) Summary() [][]string {
	rows := [][]string{
		{"Title", r.Title},
		{"Type", r.Type},
		{"Generated At", r.GeneratedAt.Format(time.RFC3339)},
	}
	switch st := r.Stats.(type) {
	case StudentStats:
		rows = append(rows,
			[]string{"Average Grade", ftoa(st.AverageGrade)},
			[]string{"Total Grades", strconv.Itoa(st.TotalGrades)},
			[]string{"Attendance Rate", ftoa(st.AttendanceRate)},
		)
	case GroupStats:
		rows = append(rows,
			[]string{"Total Students", strconv.Itoa(st.TotalStudents)},
			[]string{"Average Grade", ftoa(st.AverageGrade)},
			[]string{"Highest Grade", ftoa(st.HighestGrade)},
			[]string{"Lowest Grade", ftoa(st.LowestGrade)},
		)
	case AttendanceStats:
		rows = append(rows,
			[]string{"Total Records", strconv.Itoa(st.TotalRecords)},
			[]string{"Present", strconv.Itoa(st.PresentCount)},
			[]string{"Absent", strconv.Itoa(st.AbsentCount)},
			[]string{"Late", strconv.Itoa(st.LateCount)},
			[]string{"Excused", strconv.Itoa(st.ExcusedCount)},
		)
	}
	return rows
}

// Table returns the data slice of the report as a header and rows.
func (r Report) Table() ([]string, [][]string) {
	switch r.Type {
	case TypeStudent:
		header := []string{"Subject", "Assessment", "Score", "Max Score", "Term", "Date"}
		rows := make([][]string, 0, len(r.Grades))
		for _, g := range r.Grades {
			rows = append(rows, []string{g.Subject, g.Assessment, ftoa(g.Score), ftoa(g.MaxScore), g.Term, g.Date.String()})
		}
		return header, rows
	case TypeClass, TypeSubject:
		header := []string{"ID", "Name", "Grade", "Status", "Grades", "Average"}
		rows := make([][]string, 0, len(r.Students))
		for _, s := range r.Students {
			rows = append(rows, []string{
				strconv.Itoa(s.ID), s.Name, s.Grade, s.Status, strconv.Itoa(s.GradeCount), ftoa(s.AverageGrade),
			})
		}
		return header, rows
	case TypeAttendance:
		header := []string{"Date", "Student ID", "Student", "Status", "Reason", "Marked By"}
		rows := make([][]string, 0, len(r.Attendance))
		for _, a := range r.Attendance {
			rows = append(rows, []string{
				a.Date.String(), strconv.Itoa(a.StudentID), a.StudentName, a.Status, a.Reason, a.MarkedBy,
			})
		}
		return header, rows
	}
	return nil, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
