package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/grade"
	emailsvc "github.com/trezcool/shuleboard/services/email"
	"github.com/trezcool/shuleboard/tests"
)

func setup(t *testing.T, terminal bool) (*commandLine, *bytes.Buffer, *emailsvc.ConsoleServiceMock) {
	core.NowFunc = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }
	isTerminalFunc = func(fd int) bool { return terminal }
	t.Cleanup(func() { core.NowFunc = time.Now })

	store := testutil.NewStore(t, true /* seed */)
	validate, _ := testutil.NewValidator()
	logger := testutil.NewLogger()
	email := emailsvc.NewConsoleServiceMock(core.NewTestConfig(), logger)
	var out bytes.Buffer
	return newCommandLine(store, validate, logger, email, &out, 0), &out, email
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest, check func(t *testing.T, tt cliTest, out string)) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			default:
				if check != nil {
					check(t, tt, out.String())
				}
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, out, _ := setup(t, false)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "help flag", args: []string{"stats", "-h"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"daily", "-lol"}, wantErrStr: "flag provided but not defined"},
	}
	runCLITests(t, cli, out, tests, nil)
}

func Test_commandLine_report(t *testing.T) {
	cli, out, _ := setup(t, false)
	xlsxPath := filepath.Join(t.TempDir(), "class.xlsx")

	type extra struct {
		title string
		file  string
	}
	tests := []cliTest{
		{name: "no type", args: []string{"report"}, wantErr: errHelp},
		{name: "unknown type", args: []string{"report", "-type", "weekly"}, wantErrStr: "unknown report type"},
		{name: "missing student", args: []string{"report", "-type", "student"}, wantErrStr: "student_id"},
		{name: "unknown student", args: []string{"report", "-type", "student", "-student", "999"}, wantErrStr: "student not found"},
		{name: "bad range", args: []string{"report", "-type", "attendance", "-from", "2025-01-17", "-to", "2025-01-13"}, wantErrStr: "before start date"},
		{name: "unknown format", args: []string{"report", "-type", "class", "-grade", "10", "-format", "pdf"}, wantErrStr: "unknown export format"},
		{
			name:  "student json",
			args:  []string{"report", "-type", "student", "-student", "1"},
			extra: extra{title: "Student Report - Emma Johnson"},
		},
		{
			name:  "attendance csv",
			args:  []string{"report", "-type", "attendance", "-from", "2025-01-13", "-to", "2025-01-17", "-format", "csv"},
			extra: extra{title: "Attendance Report - 2025-01-13 to 2025-01-17"},
		},
		{
			name:  "class xlsx to file",
			args:  []string{"report", "-type", "class", "-grade", "10", "-format", "xlsx", "-o", xlsxPath},
			extra: extra{title: "Class Report - Grade 10", file: xlsxPath},
		},
	}
	runCLITests(t, cli, out, tests, func(t *testing.T, tt cliTest, output string) {
		ex := tt.extra.(extra)
		if ex.file == "" {
			assert.Contains(t, output, ex.title)
			return
		}
		assert.Empty(t, output)
		f, err := excelize.OpenFile(ex.file)
		require.NoError(t, err)
		defer f.Close()
		title, err := f.GetCellValue("Summary", "B1")
		require.NoError(t, err)
		assert.Equal(t, ex.title, title)
	})

	_, err := os.Stat(xlsxPath)
	assert.NoError(t, err)
}

func Test_commandLine_report_terminal(t *testing.T) {
	cli, out, _ := setup(t, true)

	tests := []cliTest{
		{name: "xlsx to terminal", args: []string{"report", "-type", "subject", "-subject", "Art", "-format", "xlsx"}, wantErr: errBinaryToTerminal},
		{name: "csv to terminal", args: []string{"report", "-type", "subject", "-subject", "Mathematics", "-format", "csv"}},
	}
	runCLITests(t, cli, out, tests, func(t *testing.T, tt cliTest, output string) {
		assert.True(t, strings.HasPrefix(output, "Title,Subject Report - Mathematics"), output)
	})
}

func Test_commandLine_report_email(t *testing.T) {
	cli, out, email := setup(t, true)

	tests := []cliTest{
		{name: "bad recipient", args: []string{"report", "-type", "class", "-grade", "9", "-email", "head"}, wantErrStr: "to[0]"},
		{name: "bad format", args: []string{"report", "-type", "class", "-grade", "9", "-format", "pdf", "-email", "head@school.test"}, wantErrStr: "format"},
		{
			name: "class xlsx",
			args: []string{"report", "-type", "class", "-grade", "9", "-format", "xlsx", "-email", "head@school.test, deputy@school.test"},
		},
	}
	runCLITests(t, cli, out, tests, func(t *testing.T, tt cliTest, output string) {
		assert.Equal(t, "Report sent to head@school.test, deputy@school.test\n", output)
	})

	sent := email.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "Class Report - Grade 9", sent[0].Subject)
		assert.Len(t, sent[0].To, 2)
		if assert.Len(t, sent[0].Attachments, 1) {
			assert.Equal(t, "class-report-20250115-093000.xlsx", sent[0].Attachments[0].Filename)
		}
	}
}

func Test_commandLine_stats(t *testing.T) {
	cli, out, _ := setup(t, false)

	tests := []cliTest{
		{name: "bad date", args: []string{"stats", "-date", "15/01/2025"}, wantErrStr: "parsing date"},
		{name: "seeded day", args: []string{"stats", "-date", "2025-01-15"}},
		{name: "today", args: []string{"stats"}},
	}
	runCLITests(t, cli, out, tests, func(t *testing.T, tt cliTest, output string) {
		var st struct {
			Date          core.Date `json:"date"`
			TotalStudents int       `json:"total_students"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &st))
		assert.Equal(t, core.Date("2025-01-15"), st.Date)
		assert.Equal(t, 12, st.TotalStudents)
	})
}

func Test_commandLine_daily(t *testing.T) {
	t.Run("json when piped", func(t *testing.T) {
		cli, out, _ := setup(t, false)
		require.NoError(t, cli.run([]string{"admin", "daily", "-date", "2025-01-20"}))

		var view []attendance.DailyEntry
		require.NoError(t, json.Unmarshal(out.Bytes(), &view))
		assert.Len(t, view, 12)
		for _, e := range view {
			assert.Equal(t, attendance.StatusNotMarked, e.Status)
		}
	})

	t.Run("table on a terminal", func(t *testing.T) {
		cli, out, _ := setup(t, true)
		require.NoError(t, cli.run([]string{"admin", "daily"}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "ID"))
		assert.Contains(t, lines[0], "STATUS")
		assert.Contains(t, out.String(), "Emma Johnson")
		assert.Contains(t, lines[len(lines)-1], "Total: 12")
	})
}

func Test_commandLine_mark(t *testing.T) {
	cli, out, _ := setup(t, false)

	tests := []cliTest{
		{name: "no student", args: []string{"mark", "-status", "Present"}, wantErrStr: "student_id"},
		{name: "bad status", args: []string{"mark", "-student", "1", "-status", "Asleep"}, wantErrStr: "status"},
		{name: "unknown student", args: []string{"mark", "-student", "999", "-status", "Present"}, wantErrStr: "student not found"},
		{name: "absent", args: []string{"mark", "-student", "1", "-status", "Absent", "-reason", "Sick"}, extra: attendance.StatusAbsent},
		{name: "remark late", args: []string{"mark", "-student", "1", "-status", "Late"}, extra: attendance.StatusLate},
	}
	runCLITests(t, cli, out, tests, func(t *testing.T, tt cliTest, output string) {
		var rec attendance.Record
		require.NoError(t, json.Unmarshal([]byte(output), &rec))
		assert.Equal(t, 1, rec.StudentID)
		assert.Equal(t, core.Date("2025-01-15"), rec.Date)
		assert.Equal(t, tt.extra, rec.Status)
	})

	view, err := cli.attSvc.Today(context.Background())
	require.NoError(t, err)
	for _, e := range view {
		if e.StudentID == 1 {
			assert.Equal(t, attendance.StatusLate, e.Status)
			assert.Empty(t, e.Reason)
		}
	}
}

func Test_commandLine_grades(t *testing.T) {
	cli, out, _ := setup(t, false)

	tests := []cliTest{
		{name: "no term", args: []string{"grades", "3-Mathematics=92"}, wantErr: errHelp},
		{name: "no scores", args: []string{"grades", "-term", "Term 1"}, wantErr: errHelp},
		{name: "missing score", args: []string{"grades", "-term", "Term 1", "3-Mathematics"}, wantErrStr: "expected STUDENT_ID-SUBJECT=SCORE"},
		{name: "non-numeric score", args: []string{"grades", "-term", "Term 1", "3-Mathematics=A"}, wantErrStr: "invalid score"},
		{name: "bad key", args: []string{"grades", "-term", "Term 1", "Mathematics=92"}, wantErrStr: "invalid grade key"},
		{name: "new term", args: []string{"grades", "-term", "Term 3", "3-Mathematics=92", "3-Art=81"}, extra: 2},
	}
	runCLITests(t, cli, out, tests, func(t *testing.T, tt cliTest, output string) {
		var grades []grade.Grade
		require.NoError(t, json.Unmarshal([]byte(output), &grades))
		assert.Len(t, grades, tt.extra.(int))
		for _, g := range grades {
			assert.Equal(t, "Term 3", g.Term)
			assert.Equal(t, grade.DefaultAssessment, g.Assessment)
		}
	})
}
