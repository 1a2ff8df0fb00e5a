package services

import (
	"fmt"
	"math"
	"strings"
	"travel-fare-service/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatDuration renders seconds as "Xh Ym", or "Ym" under an hour.
// Zero, negative and non-finite inputs render as "0m".
func FormatDuration(seconds float64) string {
	if !(seconds > 0) || math.IsInf(seconds, 1) {
		return "0m"
	}
	s := int64(seconds)
	h, m := s/3600, (s%3600)/60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// CopyValue is the total fare rounded to a whole currency unit.
func CopyValue(fare domain.FareDetails) int64 {
	return int64(math.Round(fare.Total))
}

// Summarize renders the shareable fare summary for one route variant.
// Amounts are rounded to whole units and grouped according to locale
// (a BCP 47 tag such as "id" or "en-US"; unknown tags fall back to English).
func Summarize(fare domain.FareDetails, variant domain.RouteVariant, locale string) string {
	p := message.NewPrinter(summaryTag(locale))

	label := "Standard route (may include tolls)"
	if variant == domain.VariantTollFree {
		label = "Alternate route (avoids tolls)"
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteByte('\n')
	b.WriteString(p.Sprintf("Total fare: Rp %d\n", CopyValue(fare)))
	b.WriteString(p.Sprintf("Per km: Rp %d\n", int64(math.Round(fare.PerDistanceUnit))))
	b.WriteString(p.Sprintf("Per passenger: Rp %d\n", int64(math.Round(fare.PerPassenger))))
	b.WriteString(p.Sprintf("Distance: %d km\n", int64(math.Round(fare.TotalDistanceKm))))
	b.WriteString("Travel time: " + FormatDuration(fare.TotalDurationSeconds))
	return b.String()
}

func summaryTag(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
