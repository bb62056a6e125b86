package agenda

import (
	"math"
	"sort"

	"github.com/example/salon-admin/internal/api"
)

// GrowthPercent returns round((current-previous)/previous*100), or 0 when
// there is no previous month to compare against.
func GrowthPercent(current, previous int) int {
	if previous <= 0 {
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// Revenue is the outcome of summing service prices.
type Revenue struct {
	Total float64
	// Skipped lists the appointment ids whose price was missing or unparsable.
	Skipped []string
}

// SumRevenue adds the price of each appointment's service. prices is keyed by
// service id; an appointment whose service has no entry, or whose price does
// not parse as a number, is skipped rather than failing the sum.
func SumRevenue(appointments []api.Appointment, prices map[string]api.FlexString) Revenue {
	var r Revenue
	for _, appt := range appointments {
		price, ok := prices[appt.ServiceID.String()]
		if !ok {
			r.Skipped = append(r.Skipped, appt.ID.String())
			continue
		}
		value, err := price.Float()
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			r.Skipped = append(r.Skipped, appt.ID.String())
			continue
		}
		r.Total += value
	}
	r.Total = math.Round(r.Total*100) / 100
	return r
}

// ServiceIDs returns the distinct service ids referenced by appointments, sorted.
func ServiceIDs(appointments []api.Appointment) []string {
	seen := make(map[string]struct{}, len(appointments))
	ids := make([]string, 0, len(appointments))
	for _, appt := range appointments {
		id := appt.ServiceID.String()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
