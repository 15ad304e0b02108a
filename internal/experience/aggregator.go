// Package experience turns the EXPERIENCE section into records and a total tenure.
package experience

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/resume"
)

// Matches ranges like "Jan 2020 - Dec 2022", "January 2019 – Present".
var rangeRe = regexp.MustCompile(`\b([A-Za-z]{3,9}\s\d{4})\b\s*[-–—]\s*([A-Za-z]{3,9}\s\d{4}\b|(?i:present)\b)`)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Clock supplies the reference time used for open-ended ranges.
type Clock func() time.Time

// Aggregator sums tenure across date ranges. It holds no mutable state.
type Aggregator struct {
	now    Clock
	logger *zap.Logger
}

// New returns an aggregator. A nil clock falls back to time.Now.
func New(now Clock, logger *zap.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{now: now, logger: logger}
}

// Records splits section content into entries on newlines and each entry into fields on commas.
func Records(section string) []resume.Record {
	return resume.SplitRecords(section)
}

// TotalYears sums the duration of every range in every record, in years rounded to 2 decimals.
// Overlapping ranges are each counted. Unparseable ranges are logged and skipped.
func (a *Aggregator) TotalYears(ctx context.Context, records []resume.Record) (float64, error) {
	months, err := a.TotalMonths(ctx, records)
	if err != nil {
		return 0, err
	}
	return math.Round(float64(months)/12*100) / 100, nil
}

// TotalMonths is TotalYears before conversion.
func (a *Aggregator) TotalMonths(ctx context.Context, records []resume.Record) (int, error) {
	now := a.now()
	total := 0

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return 0, resume.NewTimeoutError("experience", err)
		}

		entry := strings.Join(record, " ")
		for _, m := range rangeRe.FindAllStringSubmatch(entry, -1) {
			start, ok := parseMonthYear(m[1])
			if !ok {
				a.logger.Debug("skipping unparseable date range",
					zap.String("start", m[1]),
					zap.String("end", m[2]),
				)
				continue
			}

			// A named end month was worked through, so it counts. The current month does not.
			end, ok := parseMonthYear(m[2])
			if ok {
				end = end.next()
			} else {
				if !strings.EqualFold(m[2], "present") {
					a.logger.Debug("end date not parseable, using current time", zap.String("end", m[2]))
				}
				end = monthYear{year: now.Year(), month: now.Month()}
			}

			total += end.sub(start)
		}
	}

	return total, nil
}

type monthYear struct {
	year  int
	month time.Month
}

func (m monthYear) next() monthYear {
	if m.month == time.December {
		return monthYear{year: m.year + 1, month: time.January}
	}
	return monthYear{year: m.year, month: m.month + 1}
}

// sub returns whole months from other to m, never negative.
func (m monthYear) sub(other monthYear) int {
	d := (m.year-other.year)*12 + int(m.month) - int(other.month)
	if d < 0 {
		return 0
	}
	return d
}

func parseMonthYear(s string) (monthYear, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return monthYear{}, false
	}

	month, ok := months[strings.ToLower(fields[0])]
	if !ok {
		return monthYear{}, false
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return monthYear{}, false
	}

	return monthYear{year: year, month: month}, true
}
