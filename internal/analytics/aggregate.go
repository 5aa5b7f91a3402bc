package analytics

import (
	"math"
	"time"

	"github.com/atinyakov/healthmate/internal/models"
)

// Averages holds the arithmetic mean of each measurement over a record set.
type Averages struct {
	Systolic    int     `json:"systolic"`
	Diastolic   int     `json:"diastolic"`
	HeartRate   int     `json:"heart_rate"`
	SpO2        int     `json:"spo2"`
	Temperature float64 `json:"temperature"`
	Weight      int     `json:"weight"`
	// Count is the number of records averaged.
	Count int `json:"count"`
}

// IntStats is the range and mean of an integer measurement.
type IntStats struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Avg int `json:"avg"`
}

// FloatStats is the range and mean of a decimal measurement.
type FloatStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Stats holds min/max/avg per measurement.
type Stats struct {
	Systolic    IntStats   `json:"systolic"`
	Diastolic   IntStats   `json:"diastolic"`
	HeartRate   IntStats   `json:"heart_rate"`
	SpO2        IntStats   `json:"spo2"`
	Temperature FloatStats `json:"temperature"`
	Weight      IntStats   `json:"weight"`
	Count       int        `json:"count"`
}

// Trend is the week-over-week change of the averages.
type Trend struct {
	Systolic    int     `json:"systolic"`
	Diastolic   int     `json:"diastolic"`
	HeartRate   int     `json:"heart_rate"`
	SpO2        int     `json:"spo2"`
	Temperature float64 `json:"temperature"`
	Weight      int     `json:"weight"`
}

// Average computes the mean of every measurement. It returns nil for an
// empty set, which callers treat as "insufficient data".
func Average(records []models.VitalRecord) *Averages {
	if len(records) == 0 {
		return nil
	}

	var sys, dia, hr, spo2, weight int
	var temp float64
	for _, r := range records {
		sys += r.Systolic
		dia += r.Diastolic
		hr += r.HeartRate
		spo2 += r.SpO2
		temp += r.Temperature
		weight += r.Weight
	}

	n := float64(len(records))
	return &Averages{
		Systolic:    roundInt(float64(sys) / n),
		Diastolic:   roundInt(float64(dia) / n),
		HeartRate:   roundInt(float64(hr) / n),
		SpO2:        roundInt(float64(spo2) / n),
		Temperature: roundTenth(temp / n),
		Weight:      roundInt(float64(weight) / n),
		Count:       len(records),
	}
}

// Statistics computes min, max and mean of every measurement, or nil for an
// empty set.
func Statistics(records []models.VitalRecord) *Stats {
	if len(records) == 0 {
		return nil
	}

	avg := Average(records)
	first := records[0]
	st := &Stats{
		Systolic:    IntStats{Min: first.Systolic, Max: first.Systolic, Avg: avg.Systolic},
		Diastolic:   IntStats{Min: first.Diastolic, Max: first.Diastolic, Avg: avg.Diastolic},
		HeartRate:   IntStats{Min: first.HeartRate, Max: first.HeartRate, Avg: avg.HeartRate},
		SpO2:        IntStats{Min: first.SpO2, Max: first.SpO2, Avg: avg.SpO2},
		Temperature: FloatStats{Min: first.Temperature, Max: first.Temperature, Avg: avg.Temperature},
		Weight:      IntStats{Min: first.Weight, Max: first.Weight, Avg: avg.Weight},
		Count:       len(records),
	}
	for _, r := range records[1:] {
		st.Systolic.observe(r.Systolic)
		st.Diastolic.observe(r.Diastolic)
		st.HeartRate.observe(r.HeartRate)
		st.SpO2.observe(r.SpO2)
		st.Weight.observe(r.Weight)
		st.Temperature.Min = math.Min(st.Temperature.Min, r.Temperature)
		st.Temperature.Max = math.Max(st.Temperature.Max, r.Temperature)
	}
	return st
}

func (s *IntStats) observe(v int) {
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
}

// WeeklyTrend compares the averages of the last seven days with the seven
// days before them. It returns nil when either week has no records.
func WeeklyTrend(records []models.VitalRecord, now time.Time) *Trend {
	weekAgo := now.Add(-7 * day)
	twoWeeksAgo := now.Add(-14 * day)

	var current, previous []models.VitalRecord
	for _, r := range records {
		switch {
		case r.Timestamp.After(now) || r.Timestamp.Before(twoWeeksAgo):
		case r.Timestamp.Before(weekAgo):
			previous = append(previous, r)
		default:
			current = append(current, r)
		}
	}

	cur, prev := Average(current), Average(previous)
	if cur == nil || prev == nil {
		return nil
	}
	return &Trend{
		Systolic:    cur.Systolic - prev.Systolic,
		Diastolic:   cur.Diastolic - prev.Diastolic,
		HeartRate:   cur.HeartRate - prev.HeartRate,
		SpO2:        cur.SpO2 - prev.SpO2,
		Temperature: roundTenth(cur.Temperature - prev.Temperature),
		Weight:      cur.Weight - prev.Weight,
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
