package attendance

import (
	"time"

	"github.com/trezcool/shuleboard/core"
	"github.com/trezcool/shuleboard/core/student"
)

// BuildDailyView returns exactly one entry per student, in the students' order.
// Students without a record on `date` get StatusNotMarked.
func BuildDailyView(students []student.Student, records []Record, date core.Date) []DailyEntry {
	byStudent := make(map[int]Record, len(records))
	for _, r := range records {
		if r.Date != date {
			continue
		}
		if _, ok := byStudent[r.StudentID]; !ok {
			byStudent[r.StudentID] = r
		}
	}

	view := make([]DailyEntry, 0, len(students))
	for _, s := range students {
		entry := DailyEntry{
			StudentID:   s.ID,
			StudentName: s.FullName(),
			Grade:       s.Grade,
			Status:      StatusNotMarked,
		}
		if r, ok := byStudent[s.ID]; ok {
			entry.Status = r.Status
			entry.Reason = r.Reason
			ts := r.Timestamp
			entry.Timestamp = &ts
		}
		view = append(view, entry)
	}
	return view
}

// Tally counts records per status.
func Tally(records []Record) Stats {
	statuses := make([]string, len(records))
	for i, r := range records {
		statuses[i] = r.Status
	}
	return tally(statuses)
}

// TallyEntries counts daily entries per status, including the unmarked ones.
func TallyEntries(entries []DailyEntry) Stats {
	statuses := make([]string, len(entries))
	for i, e := range entries {
		statuses[i] = e.Status
	}
	return tally(statuses)
}

func tally(statuses []string) Stats {
	var st Stats
	for _, status := range statuses {
		switch status {
		case StatusPresent:
			st.Present++
		case StatusAbsent:
			st.Absent++
		case StatusLate:
			st.Late++
		case StatusExcused:
			st.Excused++
		case StatusNotMarked:
			st.NotMarked++
		}
	}
	st.Total = len(statuses)
	return st
}

// Rate is the percentage of Present records, 0 for an empty set.
func Rate(records []Record) float64 {
	return Tally(records).Rate()
}

// FilterRange keeps the records dated within [from, to].
func FilterRange(records []Record, from, to core.Date) []Record {
	res := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date.Within(from, to) {
			res = append(res, r)
		}
	}
	return res
}

// WeeklySummary counts statuses for each of the `days` days starting at `from`.
// Weekends are skipped.
func WeeklySummary(records []Record, from core.Date, days int) []DaySummary {
	summaries := make([]DaySummary, 0, days)
	index := make(map[core.Date]int, days)
	for d := from; len(summaries) < days; d = d.AddDays(1) {
		if wd := d.Time().Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		index[d] = len(summaries)
		summaries = append(summaries, DaySummary{Date: d})
	}

	for _, r := range records {
		i, ok := index[r.Date]
		if !ok {
			continue
		}
		switch r.Status {
		case StatusPresent:
			summaries[i].Present++
		case StatusAbsent:
			summaries[i].Absent++
		case StatusLate:
			summaries[i].Late++
		case StatusExcused:
			summaries[i].Excused++
		}
	}
	return summaries
}
