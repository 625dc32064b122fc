package weather

import (
	"sort"

	"github.com/yanqian/weather-records/pkg/util"
)

// CollapseForecast keeps the first point seen for each calendar date and
// returns at most MaxForecastDays days in ascending date order. The date comes
// from the provider's dt_txt when present, otherwise from the UTC timestamp.
func CollapseForecast(points []ForecastPoint) []ForecastDay {
	seen := make(map[string]struct{}, len(points))
	days := make([]ForecastDay, 0, MaxForecastDays)
	for _, p := range points {
		key := dateKey(p)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, ForecastDay{
			Date:        key,
			Temperature: p.Temperature,
			Description: p.Description,
			Icon:        p.Icon,
		})
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	if len(days) > MaxForecastDays {
		days = days[:MaxForecastDays]
	}
	return days
}

func dateKey(p ForecastPoint) string {
	if len(p.DateText) >= len(util.DateLayout) {
		return p.DateText[:len(util.DateLayout)]
	}
	if p.Timestamp.IsZero() {
		return ""
	}
	return p.Timestamp.UTC().Format(util.DateLayout)
}
