package weather

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SummaryDateLayout formats the date prefix of each summary line.
const SummaryDateLayout = "02 Jan"

// SummaryLines returns one "<date> - <label>" line per predicted hour.
func (r ForecastResult) SummaryLines() []string {
	lines := make([]string, 0, len(r.Rain))
	for i, label := range r.Rain {
		ts := r.Temperature.Prediction[i].Timestamp
		lines = append(lines, fmt.Sprintf("%s - %s", ts.Format(SummaryDateLayout), label))
	}
	return lines
}

// Summary renders the textual rain outlook shown next to the charts.
func (r ForecastResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rain Prediction (Next %d Hours):\n", r.HorizonHours)
	for _, line := range r.SummaryLines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Outlook is a compact record of one scheduled forecast run.
type Outlook struct {
	ID           string     `json:"id"`
	GeneratedAt  time.Time  `json:"generatedAt"` // always UTC
	HorizonHours int        `json:"horizonHours"`
	RainHours    int        `json:"rainHours"`
	FirstRainAt  *time.Time `json:"firstRainAt,omitempty"`
	Summary      string     `json:"summary"`
}

// NewOutlook condenses a forecast result into an Outlook stamped at now.
func NewOutlook(r ForecastResult, now time.Time) Outlook {
	o := Outlook{
		ID:           uuid.NewString(),
		GeneratedAt:  now.UTC(),
		HorizonHours: r.HorizonHours,
		Summary:      r.Summary(),
	}

	for i, label := range r.Rain {
		if label != RainLikely {
			continue
		}
		o.RainHours++
		if o.FirstRainAt == nil {
			ts := r.Temperature.Prediction[i].Timestamp
			o.FirstRainAt = &ts
		}
	}

	return o
}
