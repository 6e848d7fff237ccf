package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/br"
	"github.com/olebedev/when/rules/common"
)

// DateResolver turns free text like "amanhã" or "25/12" into a calendar day.
// Resolution prefers dates at or after the reference day; anything in the
// past resolves to not-ok so the caller asks the user to rephrase.
type DateResolver struct {
	parser *when.Parser
	loc    *time.Location
}

func NewDateResolver(loc *time.Location) *DateResolver {
	p := when.New(nil)
	p.Add(br.All...)
	p.Add(common.All...)

	return &DateResolver{parser: p, loc: loc}
}

// numericDate matches day-first dates: 25/12, 25/12/2026, 5/1.
var numericDate = regexp.MustCompile(`(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?`)

var deaccent = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u",
	"ç", "c",
)

func (r *DateResolver) Resolve(text string, ref time.Time) (time.Time, bool) {
	ref = ref.In(r.loc)
	text = deaccent.Replace(strings.ToLower(strings.TrimSpace(text)))

	// A numeric date is authoritative: "32/01" is a failed date, not text
	// for the NL parser to reinterpret.
	if m := numericDate.FindStringSubmatch(text); m != nil {
		return r.resolveNumeric(m, ref)
	}
	if d, ok := r.resolveRelative(text, ref); ok {
		return d, true
	}

	res, err := r.parser.Parse(text, ref)
	if err != nil || res == nil {
		return time.Time{}, false
	}

	d := dayOf(res.Time.In(r.loc), r.loc)
	if d.Before(dayOf(ref, r.loc)) {
		return time.Time{}, false
	}
	return d, true
}

func (r *DateResolver) resolveNumeric(m []string, ref time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := ref.Year()
	explicitYear := false
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		explicitYear = true
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, r.loc)
	if d.Day() != day || d.Month() != time.Month(month) {
		return time.Time{}, false
	}

	// Without an explicit year, "25/12" means the next 25th of December.
	if !explicitYear && d.Before(dayOf(ref, r.loc)) {
		d = d.AddDate(1, 0, 0)
	}
	if d.Before(dayOf(ref, r.loc)) {
		return time.Time{}, false
	}
	return d, true
}

// resolveRelative covers the everyday Portuguese day words directly; the
// text is already lowercased and deaccented.
func (r *DateResolver) resolveRelative(text string, ref time.Time) (time.Time, bool) {
	today := dayOf(ref, r.loc)
	switch {
	case strings.Contains(text, "depois de amanha"):
		return today.AddDate(0, 0, 2), true
	case strings.Contains(text, "amanha"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(text, "hoje"):
		return today, true
	}
	return time.Time{}, false
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// timeOfDay accepts "15", "15h", "15:30", "15h30", "as 15h".
var timeOfDay = regexp.MustCompile(`(?:^|\s)(\d{1,2})(?:[:h](\d{2}))?h?(?:\s|$)`)

// ParseTimeOfDay extracts an hour and minute from a slot-choice message.
func ParseTimeOfDay(text string) (hour, minute int, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	m := timeOfDay.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}

	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
