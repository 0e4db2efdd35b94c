// Package format renders API values for people. Inputs it cannot parse are
// shown as given rather than dropped.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/felixggj/happy-robot-fde/internal/models"
	"github.com/felixggj/happy-robot-fde/internal/ui/theme"
)

const Missing = "-"

var printer = message.NewPrinter(language.AmericanEnglish)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Currency formats v as US dollars: 2500 -> $2,500.00.
func Currency(v float64) string {
	s := printer.Sprintf("$%.2f", math.Abs(v))
	if v < 0 && s != "$0.00" {
		return "-" + s
	}
	return s
}

func CurrencyPtr(v *float64) string {
	if v == nil {
		return Missing
	}
	return Currency(*v)
}

func Number(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.1f", v)
}

func NumberPtr(v *float64) string {
	if v == nil {
		return Missing
	}
	return Number(*v)
}

// Percent renders a value already expressed in percent: 42.5 -> 42.5%.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Date renders timestamps as "Jan 15, 2024 08:00". Timestamps arrive as
// strings in a few shapes; anything unrecognised is returned unchanged.
func Date(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Missing
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006 15:04")
		}
	}
	return raw
}

// Duration renders seconds as "3m 25s", or "45s" under a minute.
func Duration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	m, s := seconds/60, seconds%60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	if m >= 60 {
		return fmt.Sprintf("%dh %dm %ds", m/60, m%60, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

func OutcomeStyle(o models.Outcome) lipgloss.Style {
	switch o {
	case models.OutcomeAccepted:
		return theme.Good
	case models.OutcomeRejected:
		return theme.Bad
	case models.OutcomeNegotiating:
		return theme.Warn
	}
	return theme.Neutral
}

func SentimentStyle(s models.Sentiment) lipgloss.Style {
	switch s {
	case models.SentimentPositive:
		return theme.Good
	case models.SentimentNegative:
		return theme.Bad
	}
	return theme.Neutral
}

// Title upper-cases the first letter: "negotiating" -> "Negotiating".
func Title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func Str(s *string) string {
	if s == nil || *s == "" {
		return Missing
	}
	return *s
}
