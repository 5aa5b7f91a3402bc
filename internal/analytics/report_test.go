package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/healthmate/internal/models"
)

func TestOwnerName(t *testing.T) {
	assert.Equal(t, "Alice", Owner{Email: "alice@example.com", DisplayName: "Alice"}.Name())
	assert.Equal(t, "alice", Owner{Email: "alice@example.com"}.Name())
	assert.Equal(t, "User", Owner{}.Name())
}

func TestCompileReport_MatchesStandaloneAnalytics(t *testing.T) {
	records := append(healthy(20), vital(3, 150, 95, 110, 93, 100.2, 180), vital(60, 90, 60, 50, 99, 97.0, 150))
	owner := Owner{Email: "alice@example.com", DisplayName: "Alice"}
	w := LastDays(30)

	doc := CompileReport(owner, records, w, now)

	filtered := FilterByRange(records, w, now)
	assert.Equal(t, Average(filtered), doc.Averages)
	assert.Equal(t, Statistics(filtered), doc.Statistics)
	assert.Equal(t, GenerateInsights(filtered), doc.Insights)
	assert.Equal(t, GenerateRecommendations(filtered), doc.Recommendations)
	assert.Equal(t, len(filtered), doc.TotalRecords)

	assert.Equal(t, "Alice", doc.UserName)
	assert.Equal(t, "alice@example.com", doc.UserEmail)
	assert.Equal(t, "Last 30 Days", doc.WindowLabel)
	assert.Equal(t, now, doc.GeneratedAt)
	assert.Equal(t, now.Add(-30*24*time.Hour), doc.PeriodStart)
	assert.Equal(t, "05/31/2026 - 06/30/2026", doc.DateRangeText)

	require.Len(t, doc.Charts, 4)
	for i, vt := range VitalTypes {
		assert.Equal(t, BuildChartSeries(filtered, vt, DefaultChartPoints), doc.Charts[i])
	}

	require.Len(t, doc.Records, ReportRowLimit)
	for i := 1; i < len(doc.Records); i++ {
		assert.False(t, doc.Records[i].Timestamp.After(doc.Records[i-1].Timestamp), "rows must be most recent first")
	}
}

func TestCompileReport_Empty(t *testing.T) {
	doc := CompileReport(Owner{Email: "new@example.com"}, nil, AllTime, now)

	assert.Nil(t, doc.Averages)
	assert.Nil(t, doc.Statistics)
	assert.Empty(t, doc.Insights)
	assert.Equal(t, bootstrapRecommendations, doc.Recommendations)
	assert.NotNil(t, doc.Records)
	assert.Empty(t, doc.Records)
	require.Len(t, doc.Charts, 4)
	for _, c := range doc.Charts {
		assert.True(t, c.Empty)
	}
	assert.Equal(t, "All Time", doc.WindowLabel)
}

func TestCompileSharePreview_Redacted(t *testing.T) {
	records := healthy(14)

	doc := CompileSharePreview(Owner{Email: "alice@example.com"}, records, AllTime, now)

	require.Len(t, doc.Records, PreviewRowLimit)
	assert.Equal(t, 14, doc.TotalRecords)
	assert.Equal(t, Average(records), doc.Averages)
	assert.Equal(t, now, doc.Records[0].Timestamp)
	assert.Equal(t, GenerateInsights(records), doc.Insights)
}

func TestPreviewRows_DropsIdentifyingFields(t *testing.T) {
	r := vital(0, 120, 80, 70, 98, 98.6, 160)
	r.ID = "rec-1"

	rows := PreviewRows([]models.VitalRecord{r}, PreviewRowLimit)

	require.Len(t, rows, 1)
	assert.Equal(t, models.PreviewRow{
		Timestamp: r.Timestamp, Systolic: 120, Diastolic: 80, HeartRate: 70, SpO2: 98, Temperature: 98.6,
	}, rows[0])
}
