package core

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

// timestampLayouts are tried in order when reading date-times from the API.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ParseDate reads a calendar date. Date-time values are truncated to their date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// ParseTimestamp reads a date-time in any of the layouts the API is known to emit.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// DateFormatter renders dates the way the reader's locale expects.
type DateFormatter struct {
	Tag            language.Tag
	DateLayout     string
	DateTimeLayout string
}

var (
	supportedLocales = []language.Tag{language.French, language.AmericanEnglish, language.BritishEnglish, language.German}
	localeMatcher    = language.NewMatcher(supportedLocales)

	localeLayouts = map[language.Tag][2]string{
		language.French:          {"02/01/2006", "02/01/2006 15:04:05"},
		language.AmericanEnglish: {"1/2/2006", "1/2/2006, 3:04:05 PM"},
		language.BritishEnglish:  {"02/01/2006", "02/01/2006, 15:04:05"},
		language.German:          {"2.1.2006", "2.1.2006, 15:04:05"},
	}
)

// DefaultDateFormatter uses French conventions.
func DefaultDateFormatter() DateFormatter {
	return formatterFor(language.French)
}

// DateFormatterFor picks the closest supported locale for an Accept-Language header value.
func DateFormatterFor(acceptLanguage string) DateFormatter {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return DefaultDateFormatter()
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultDateFormatter()
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return DefaultDateFormatter()
	}
	return formatterFor(supportedLocales[idx])
}

func formatterFor(tag language.Tag) DateFormatter {
	layouts, ok := localeLayouts[tag]
	if !ok {
		layouts = localeLayouts[language.French]
		tag = language.French
	}
	return DateFormatter{Tag: tag, DateLayout: layouts[0], DateTimeLayout: layouts[1]}
}

// Date renders a calendar date, or fallback when the date is unknown.
func (f DateFormatter) Date(d Date, fallback string) string {
	if d.IsZero() {
		return fallback
	}
	return d.Format(f.DateLayout)
}

// DateTime renders a timestamp, or fallback when it is unknown.
func (f DateFormatter) DateTime(t time.Time, fallback string) string {
	if t.IsZero() {
		return fallback
	}
	return t.Format(f.DateTimeLayout)
}
