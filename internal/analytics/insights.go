package analytics

import (
	"fmt"

	"github.com/atinyakov/healthmate/internal/models"
)

// InsightKind classifies an insight for display.
type InsightKind string

const (
	Success InsightKind = "success"
	Warning InsightKind = "warning"
	Info    InsightKind = "info"
)

// Color returns the display color tag of the kind.
func (k InsightKind) Color() string {
	switch k {
	case Success:
		return "#10B981"
	case Warning:
		return "#F59E0B"
	default:
		return "#3B82F6"
	}
}

// Insight is a rule-triggered observation about a record set.
type Insight struct {
	Category string      `json:"category"`
	Kind     InsightKind `json:"kind"`
	Icon     string      `json:"icon"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Color    string      `json:"color"`
}

// facts is what the rules are evaluated against.
type facts struct {
	avg   Averages
	count int
}

type rule struct {
	when func(facts) bool
	emit func(facts) Insight
}

// category is an ordered rule list. The first matching rule produces the
// category's only insight.
type category struct {
	name  string
	rules []rule
}

// insightRules is evaluated category by category; categories never suppress
// each other.
var insightRules = []category{
	{
		name: "blood_pressure",
		rules: []rule{
			{
				when: func(f facts) bool { return f.avg.Systolic < 120 && f.avg.Diastolic < 80 },
				emit: func(facts) Insight {
					return newInsight(Success, "trending-up", "Great Progress!",
						"Your blood pressure is in the healthy range")
				},
			},
			{
				when: func(f facts) bool { return f.avg.Systolic > 130 },
				emit: func(f facts) Insight {
					return newInsight(Warning, "warning", "Monitor Closely",
						fmt.Sprintf("Your systolic reading is elevated (%d mmHg)", f.avg.Systolic))
				},
			},
			{
				when: func(f facts) bool { return f.avg.Systolic >= 120 && f.avg.Systolic <= 130 },
				emit: func(facts) Insight {
					return newInsight(Info, "information-circle", "Elevated Blood Pressure",
						"Your blood pressure is slightly elevated. Consider lifestyle modifications.")
				},
			},
		},
	},
	{
		name: "heart_rate",
		rules: []rule{
			{
				when: func(f facts) bool { return f.avg.HeartRate < 60 },
				emit: func(f facts) Insight {
					return newInsight(Info, "heart", "Low Heart Rate",
						fmt.Sprintf("Your average heart rate is %d BPM. This may be normal for athletes.", f.avg.HeartRate))
				},
			},
			{
				when: func(f facts) bool { return f.avg.HeartRate > 100 },
				emit: func(f facts) Insight {
					return newInsight(Warning, "heart", "Elevated Heart Rate",
						fmt.Sprintf("Your average heart rate is %d BPM. Consider consulting a doctor.", f.avg.HeartRate))
				},
			},
		},
	},
	{
		name: "spo2",
		rules: []rule{
			{
				when: func(f facts) bool { return f.avg.SpO2 < 95 },
				emit: func(f facts) Insight {
					return newInsight(Warning, "water", "Low Oxygen Levels",
						fmt.Sprintf("Your average SpO₂ is %d%%. Consult a healthcare provider.", f.avg.SpO2))
				},
			},
		},
	},
	{
		name: "tracking",
		rules: []rule{
			{
				when: func(f facts) bool { return f.count >= 6 },
				emit: func(f facts) Insight {
					return newInsight(Success, "checkmark-circle", "Consistent Tracking",
						fmt.Sprintf("You've recorded %d measurements - keep it up!", f.count))
				},
			},
			{
				when: func(f facts) bool { return f.count >= 3 },
				emit: func(f facts) Insight {
					return newInsight(Info, "calendar", "Good Start",
						fmt.Sprintf("You have %d measurements. Try to track daily for better insights.", f.count))
				},
			},
		},
	},
}

func newInsight(kind InsightKind, icon, title, message string) Insight {
	return Insight{Kind: kind, Icon: icon, Title: title, Message: message, Color: kind.Color()}
}

// GenerateInsights evaluates the threshold rules against the averages of
// records. An empty set yields an empty, non-nil slice.
func GenerateInsights(records []models.VitalRecord) []Insight {
	return insightsFor(Average(records))
}

func insightsFor(avg *Averages) []Insight {
	insights := []Insight{}
	if avg == nil {
		return insights
	}
	f := facts{avg: *avg, count: avg.Count}
	for _, c := range insightRules {
		for _, r := range c.rules {
			if r.when(f) {
				in := r.emit(f)
				in.Category = c.name
				insights = append(insights, in)
				break
			}
		}
	}
	return insights
}

// MinTrackingDays is the record count below which owners are nudged to keep
// tracking.
const MinTrackingDays = 7

// bootstrapRecommendations is returned when there is nothing to analyse yet.
var bootstrapRecommendations = []string{
	"Start recording your vitals daily to track your health",
	"Measure at the same time each day for consistency",
	"Keep a log of any symptoms or activities that may affect readings",
}

// GenerateRecommendations returns ordered lifestyle and tracking tips for
// records. Duplicate-day detection looks only at the records given, so a
// windowed caller gets a windowed answer.
func GenerateRecommendations(records []models.VitalRecord) []string {
	avg := Average(records)
	if avg == nil {
		return append([]string(nil), bootstrapRecommendations...)
	}

	var recs []string
	if avg.Systolic >= 120 {
		recs = append(recs,
			"Consider monitoring BP at the same time daily for consistency",
			"Reduce sodium intake and maintain a healthy diet",
			"Regular exercise can help lower blood pressure",
		)
	} else {
		recs = append(recs, "Your readings are within healthy range - maintain current lifestyle")
	}

	recs = append(recs, "Share these trends with your healthcare provider at your next visit")

	if len(records) < MinTrackingDays {
		recs = append(recs, "Record vitals for at least 7 days to identify patterns")
	}

	if distinctDates(records) < len(records) {
		recs = append(recs, "Try to record only one measurement per day for accurate trends")
	}
	return recs
}

func distinctDates(records []models.VitalRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.CaptureDate()] = struct{}{}
	}
	return len(seen)
}
