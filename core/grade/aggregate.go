package grade

import "sort"

type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

type SubjectSummary struct {
	Subject string `json:"subject"`
	Summary
}

type Band struct {
	Label string  `json:"grade"`
	Min   float64 `json:"-"`
	Count int     `json:"count"`
}

// GPA is the mean of the scores greater than zero, 0 when there are none.
func GPA(grades []Grade) float64 {
	var (
		total float64
		n     int
	)
	for _, g := range grades {
		if g.Score > 0 {
			total += g.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// Summarize computes count, mean, max & min of the scores. All zero for an empty set.
func Summarize(grades []Grade) Summary {
	if len(grades) == 0 {
		return Summary{}
	}
	sum := Summary{Count: len(grades), Highest: grades[0].Score, Lowest: grades[0].Score}
	var total float64
	for _, g := range grades {
		total += g.Score
		if g.Score > sum.Highest {
			sum.Highest = g.Score
		}
		if g.Score < sum.Lowest {
			sum.Lowest = g.Score
		}
	}
	sum.Average = total / float64(len(grades))
	return sum
}

// SubjectAverages summarizes grades per subject, sorted by subject.
func SubjectAverages(grades []Grade) []SubjectSummary {
	bySubject := make(map[string][]Grade)
	for _, g := range grades {
		bySubject[g.Subject] = append(bySubject[g.Subject], g)
	}
	res := make([]SubjectSummary, 0, len(bySubject))
	for subject, gs := range bySubject {
		res = append(res, SubjectSummary{Subject: subject, Summary: Summarize(gs)})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Subject < res[j].Subject })
	return res
}

// Distribution counts grades per letter band on their percentage score.
func Distribution(grades []Grade) []Band {
	bands := []Band{
		{Label: "A (90-100)", Min: 90},
		{Label: "B (80-89)", Min: 80},
		{Label: "C (70-79)", Min: 70},
		{Label: "D (60-69)", Min: 60},
		{Label: "F (0-59)", Min: 0},
	}
	for _, g := range grades {
		pct := g.Percent()
		for i := range bands {
			if pct >= bands[i].Min || i == len(bands)-1 {
				bands[i].Count++
				break
			}
		}
	}
	return bands
}

// Filter keeps the grades matching `qf`.
func Filter(grades []Grade, qf QueryFilter) []Grade {
	res := make([]Grade, 0, len(grades))
	for _, g := range grades {
		if qf.Match(g) {
			res = append(res, g)
		}
	}
	return res
}
