package records

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/weather-records/pkg/util"
)

var csvHeader = []string{
	"Location",
	"Resolved Location",
	"Start Date",
	"End Date",
	"Temperature (°C)",
	"Description",
	"Humidity (%)",
	"Pressure (hPa)",
	"Created At",
}

// EncodeCSV renders one row per record. String cells are always quoted and
// embedded quotes are doubled; numeric cells are written bare.
func EncodeCSV(items []Record) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(csvHeader, ","))
	buf.WriteString("\n")
	for _, r := range items {
		current := r.WeatherData.Current
		cells := []string{
			quote(r.OriginalLocationQuery),
			quote(resolvedLabel(r)),
			quote(formatDate(r.DateRange.StartDate)),
			quote(formatDate(r.DateRange.EndDate)),
			formatNumber(current.Temperature),
			quote(current.Description),
			formatNumber(current.Humidity),
			formatNumber(current.Pressure),
			quote(r.CreatedAt.UTC().Format(time.RFC3339)),
		}
		buf.WriteString(strings.Join(cells, ","))
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func resolvedLabel(r Record) string {
	name := strings.TrimSpace(r.ResolvedLocation.Name)
	country := strings.TrimSpace(r.ResolvedLocation.Country)
	switch {
	case name == "":
		return country
	case country == "":
		return name
	default:
		return name + ", " + country
	}
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(util.DateLayout)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
