package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const periodDateLayout = "02/01/2006"

var periodPattern = regexp.MustCompile(`(?i)DESDE\s+(\d{2}/\d{2}/\d{4})\s+HASTA\s+(\d{2}/\d{2}/\d{4})`)

// StatementPeriod is the date range printed in a statement header.
type StatementPeriod struct {
	Start time.Time
	End   time.Time
}

// FindStatementPeriod looks for a "DESDE dd/mm/yyyy HASTA dd/mm/yyyy" header.
func FindStatementPeriod(text string) (*StatementPeriod, bool) {
	m := periodPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	start, err := time.Parse(periodDateLayout, m[1])
	if err != nil {
		return nil, false
	}
	end, err := time.Parse(periodDateLayout, m[2])
	if err != nil || end.Before(start) {
		return nil, false
	}
	return &StatementPeriod{Start: start, End: end}, true
}

// YearFor picks the year of a year-less date. When the period spans two years, months from
// the start month onwards belong to the start year and earlier months to the end year.
func (p *StatementPeriod) YearFor(month time.Month) int {
	if p.Start.Year() == p.End.Year() || month >= p.Start.Month() {
		return p.Start.Year()
	}
	return p.End.Year()
}

// parseStatementDate parses dd/mm, dd/mm/yy or dd/mm/yyyy.
func parseStatementDate(token string, period *StatementPeriod, fallbackYear int) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(token), "/")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("invalid date %q", token)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", token)
	}
	monthNum, err := strconv.Atoi(parts[1])
	if err != nil || monthNum < 1 || monthNum > 12 {
		return time.Time{}, fmt.Errorf("invalid date %q", token)
	}
	month := time.Month(monthNum)

	var year int
	switch {
	case len(parts) == 3 && len(parts[2]) == 2:
		yy, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", token)
		}
		year = 2000 + yy
	case len(parts) == 3:
		year, err = strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", token)
		}
	case period != nil:
		year = period.YearFor(month)
	default:
		year = fallbackYear
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, fmt.Errorf("invalid date %q", token)
	}
	return d, nil
}
