package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/attendance"
	"github.com/trezcool/shuleboard/core/dashboard"
	"github.com/trezcool/shuleboard/core/grade"
	"github.com/trezcool/shuleboard/core/report"
	"github.com/trezcool/shuleboard/core/student"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp             = errors.New("help provided")
	errBinaryToTerminal = errors.New("refusing to write a spreadsheet to the terminal, use -o FILE")
)

type commandLine struct {
	studentSvc *student.Service
	attSvc     *attendance.Service
	gradeSvc   *grade.Service
	reportSvc  *report.Service
	mailer     *report.Mailer
	dashSvc    *dashboard.Service
	validate   *validator.Validate
	out        io.Writer
	outFd      int
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  report -type student|class|subject|attendance [selectors] [-format json|csv|xlsx] [-o FILE | -email TO,...] - generate & export a report")
	fmt.Fprintln(cli.out, "  stats [-date YYYY-MM-DD] - print the dashboard statistics")
	fmt.Fprintln(cli.out, "  daily [-date YYYY-MM-DD] - print the daily attendance view")
	fmt.Fprintln(cli.out, "  mark -student ID -status STATUS [-reason REASON] - mark a student's attendance for today")
	fmt.Fprintln(cli.out, "  grades -term TERM STUDENT_ID-SUBJECT=SCORE... - bulk update grades")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	var err error
	switch args[1] {
	case "report":
		err = cli.runReport(ctx, args[2:])
	case "stats":
		err = cli.runStats(ctx, args[2:])
	case "daily":
		err = cli.runDaily(ctx, args[2:])
	case "mark":
		err = cli.runMark(ctx, args[2:])
	case "grades":
		err = cli.runGrades(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
	if err == flag.ErrHelp {
		return errHelp
	}
	return err
}

func (cli *commandLine) runReport(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("report")
	typ := cmd.String("type", "", "The report type: "+strings.Join(report.Types, ", "))
	studentID := cmd.Int("student", 0, "The student ID (student report)")
	level := cmd.String("grade", "", "The grade level (class report)")
	subject := cmd.String("subject", "", "The subject (subject report)")
	from := cmd.String("from", "", "The start date, YYYY-MM-DD (attendance report)")
	to := cmd.String("to", "", "The end date, YYYY-MM-DD (attendance report)")
	format := cmd.String("format", report.FormatJSON, "The export format: "+strings.Join(report.Formats, ", "))
	output := cmd.String("o", "", "The output file, stdout by default")
	emailTo := cmd.String("email", "", "Comma separated recipients to email the report to, instead of writing it")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *typ == "" {
		cmd.Usage()
		return errHelp
	}

	params := report.Params{
		Type:       *typ,
		StudentID:  *studentID,
		GradeLevel: *level,
		Subject:    *subject,
		StartDate:  core.Date(*from),
		EndDate:    core.Date(*to),
	}
	if _, err := cli.reportSvc.Generate(ctx, params); err != nil {
		return err
	}

	if *emailTo != "" {
		return cli.emailReport(strings.Split(*emailTo, ","), *format)
	}
	if *output == "" {
		if *format == report.FormatXLSX && isTerminalFunc(cli.outFd) {
			return errBinaryToTerminal
		}
		return cli.reportSvc.ExportLast(cli.out, *format)
	}
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err = cli.reportSvc.ExportLast(f, *format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (cli *commandLine) emailReport(to []string, format string) error {
	sr := report.SendRequest{To: to, Format: format}
	if err := sr.Validate(cli.validate); err != nil {
		return err
	}
	sent, err := cli.mailer.SendLast(sr)
	if err != nil {
		return err
	}
	addrs := make([]string, 0, len(sent))
	for _, addr := range sent {
		addrs = append(addrs, addr.Address)
	}
	_, err = fmt.Fprintf(cli.out, "Report sent to %s\n", strings.Join(addrs, ", "))
	return err
}

func (cli *commandLine) runStats(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("stats")
	date := cmd.String("date", "", "The day, YYYY-MM-DD. Defaults to today")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	d, err := parseDateFlag(*date)
	if err != nil {
		return err
	}
	st, err := cli.dashSvc.Stats(ctx, d)
	if err != nil {
		return err
	}
	return cli.printJSON(st)
}

func (cli *commandLine) runDaily(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("daily")
	date := cmd.String("date", "", "The day, YYYY-MM-DD. Defaults to today")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	d, err := parseDateFlag(*date)
	if err != nil {
		return err
	}
	view, err := cli.attSvc.DailyView(ctx, d)
	if err != nil {
		return err
	}
	if !isTerminalFunc(cli.outFd) {
		return cli.printJSON(view)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT\tGRADE\tSTATUS\tREASON")
	for _, e := range view {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.StudentID, e.StudentName, e.Grade, e.Status, e.Reason)
	}
	st := attendance.TallyEntries(view)
	fmt.Fprintf(w, "\nPresent: %d  Absent: %d  Late: %d  Excused: %d  Not Marked: %d  Total: %d\n",
		st.Present, st.Absent, st.Late, st.Excused, st.NotMarked, st.Total)
	return w.Flush()
}

func (cli *commandLine) runMark(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("mark")
	studentID := cmd.Int("student", 0, "The student ID")
	status := cmd.String("status", "", "The status: "+strings.Join(attendance.Statuses, ", "))
	reason := cmd.String("reason", "", "The reason, if any")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	data := attendance.MarkRequest{StudentID: *studentID, Status: *status, Reason: *reason}
	if err := data.Validate(cli.validate); err != nil {
		cmd.Usage()
		return err
	}
	rec, err := cli.attSvc.Mark(ctx, data.StudentID, data.Status, data.Reason)
	if err != nil {
		return err
	}
	return cli.printJSON(rec)
}

func (cli *commandLine) runGrades(ctx context.Context, args []string) error {
	cmd := cli.newFlagSet("grades")
	term := cmd.String("term", "", "The term, e.g. \"Term 1\"")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *term == "" || cmd.NArg() == 0 {
		cmd.Usage()
		return errHelp
	}

	data := grade.BulkUpdate{Term: *term, Scores: make(map[string]float64, cmd.NArg())}
	for _, arg := range cmd.Args() {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid score %q, expected STUDENT_ID-SUBJECT=SCORE", arg)
		}
		score, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid score %q: %v", arg, err)
		}
		data.Scores[key] = score
	}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}
	grades, err := cli.gradeSvc.BulkUpdate(ctx, data)
	if err != nil {
		return err
	}
	return cli.printJSON(grades)
}

// printJSON indents the output for terminals.
func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	if isTerminalFunc(cli.outFd) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func parseDateFlag(val string) (core.Date, error) {
	if val == "" {
		return core.Today(), nil
	}
	return core.ParseDate(val)
}
