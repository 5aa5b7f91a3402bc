package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/healthmate/internal/models"
)

// DefaultChartPoints is the number of most recent records plotted when the
// caller does not ask for a specific count.
const DefaultChartPoints = 7

// NoDataLabel is the label of the single placeholder point returned for an
// empty record set. It is not a measurement and must not be plotted.
const NoDataLabel = "No Data"

// ErrUnknownVitalType is returned by ParseVitalType for unsupported selectors.
var ErrUnknownVitalType = errors.New("unknown vital type")

// VitalType selects which measurement a chart plots.
type VitalType string

const (
	BloodPressure VitalType = "bloodPressure"
	HeartRate     VitalType = "heartRate"
	SpO2          VitalType = "spO2"
	Temperature   VitalType = "temperature"
)

// VitalTypes lists the chartable measurements in report order.
var VitalTypes = []VitalType{BloodPressure, HeartRate, SpO2, Temperature}

// ParseVitalType validates a chart selector.
func ParseVitalType(s string) (VitalType, error) {
	for _, vt := range VitalTypes {
		if string(vt) == s {
			return vt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVitalType, s)
}

const (
	primaryColor   = "#4F46E5"
	secondaryColor = "#8B5CF6"
)

// Dataset is one numeric series of a chart.
type Dataset struct {
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Data  []float64 `json:"data"`
}

// ChartSeries is the labeled, render-ready series for one vital type.
type ChartSeries struct {
	VitalType VitalType `json:"vital_type"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Labels    []string  `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
	Legend    []string  `json:"legend,omitempty"`
	// Empty marks the "No Data" placeholder series.
	Empty bool `json:"empty"`
}

// BuildChartSeries converts the most recent maxPoints records of an already
// date-filtered, chronologically ordered set into chart series. Blood
// pressure yields a systolic and a diastolic dataset; the other types yield
// one. An empty set yields the NoDataLabel placeholder with Empty set.
func BuildChartSeries(records []models.VitalRecord, vt VitalType, maxPoints int) ChartSeries {
	if maxPoints <= 0 {
		maxPoints = DefaultChartPoints
	}
	cs := ChartSeries{
		VitalType: vt,
		Title:     ChartTitle(vt),
		Subtitle:  ChartSubtitle(vt),
	}

	if len(records) == 0 {
		cs.Labels = []string{NoDataLabel}
		cs.Datasets = []Dataset{{Name: seriesName(vt), Color: primaryColor, Data: []float64{0}}}
		cs.Empty = true
		return cs
	}

	recent := records
	if len(recent) > maxPoints {
		recent = recent[len(recent)-maxPoints:]
	}

	cs.Labels = make([]string, len(recent))
	for i, r := range recent {
		cs.Labels[i] = chartLabel(r)
	}

	switch vt {
	case BloodPressure:
		sys := make([]float64, len(recent))
		dia := make([]float64, len(recent))
		for i, r := range recent {
			sys[i] = float64(r.Systolic)
			dia[i] = float64(r.Diastolic)
		}
		cs.Datasets = []Dataset{
			{Name: "Systolic", Color: primaryColor, Data: sys},
			{Name: "Diastolic", Color: secondaryColor, Data: dia},
		}
		cs.Legend = []string{"Systolic", "Diastolic"}
	default:
		data := make([]float64, len(recent))
		for i, r := range recent {
			data[i] = measurement(r, vt)
		}
		cs.Datasets = []Dataset{{Name: seriesName(vt), Color: primaryColor, Data: data}}
	}
	return cs
}

// AverageDisplay formats the average of the selected measurement for
// display, or "N/A" for an empty set.
func AverageDisplay(records []models.VitalRecord, vt VitalType) string {
	return FormatAverage(Average(records), vt)
}

// FormatAverage formats an already computed average. A nil average is "N/A".
func FormatAverage(avg *Averages, vt VitalType) string {
	if avg == nil {
		return "N/A"
	}
	switch vt {
	case BloodPressure:
		return fmt.Sprintf("%d/%d", avg.Systolic, avg.Diastolic)
	case HeartRate:
		return strconv.Itoa(avg.HeartRate)
	case SpO2:
		return fmt.Sprintf("%d%%", avg.SpO2)
	case Temperature:
		return strconv.FormatFloat(avg.Temperature, 'f', 1, 64) + "°F"
	default:
		return "N/A"
	}
}

// ChartTitle returns the heading for a vital type's chart.
func ChartTitle(vt VitalType) string {
	switch vt {
	case BloodPressure:
		return "Blood Pressure Trend"
	case HeartRate:
		return "Heart Rate Trend"
	case SpO2:
		return "Blood Oxygen Trend"
	case Temperature:
		return "Temperature Trend"
	default:
		return ""
	}
}

// ChartSubtitle returns the caption for a vital type's chart.
func ChartSubtitle(vt VitalType) string {
	switch vt {
	case BloodPressure:
		return "Systolic and Diastolic readings over time"
	case HeartRate:
		return "Heart rate readings over time"
	case SpO2:
		return "Blood oxygen saturation over time"
	case Temperature:
		return "Body temperature readings over time"
	default:
		return ""
	}
}

func seriesName(vt VitalType) string {
	switch vt {
	case HeartRate:
		return "Heart Rate"
	case SpO2:
		return "SpO2"
	case Temperature:
		return "Temperature"
	default:
		return "Blood Pressure"
	}
}

func measurement(r models.VitalRecord, vt VitalType) float64 {
	switch vt {
	case HeartRate:
		return float64(r.HeartRate)
	case SpO2:
		return float64(r.SpO2)
	case Temperature:
		return r.Temperature
	default:
		return float64(r.Systolic)
	}
}

// chartLabel formats the capture date as month/day without padding.
func chartLabel(r models.VitalRecord) string {
	d, err := time.Parse(models.DateLayout, r.CaptureDate())
	if err != nil {
		d = r.Timestamp.UTC()
	}
	return fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
}
