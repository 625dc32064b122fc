package records

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-records/internal/domain/weather"
)

func TestEncodeCSV(t *testing.T) {
	items := []Record{
		{
			OriginalLocationQuery: `the "big apple"`,
			ResolvedLocation:      weather.ResolvedLocation{Name: "New York", Country: "US"},
			DateRange:             DateRange{StartDate: day(1), EndDate: day(7)},
			WeatherData: weather.Snapshot{Current: weather.CurrentConditions{
				Temperature: 24.5, Description: "broken clouds", Humidity: 58, Pressure: 1012,
			}},
			CreatedAt: time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
		},
	}

	lines := strings.Split(strings.TrimSpace(string(EncodeCSV(items))), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Location,Resolved Location,Start Date,End Date,Temperature (°C),Description,Humidity (%),Pressure (hPa),Created At", lines[0])
	require.Equal(t, `"the ""big apple""","New York, US","2024-06-01","2024-06-07",24.5,"broken clouds",58,1012,"2024-06-10T08:00:00Z"`, lines[1])
}

func TestEncodeCSVEmpty(t *testing.T) {
	out := string(EncodeCSV(nil))
	require.True(t, strings.HasPrefix(out, "Location,"))
	require.Equal(t, 1, strings.Count(out, "\n"))
}
