package trend

import (
	"time"
)

// monthBase is the calendar baseline per canonical category, January..December.
// Spirits peak around the winter holidays, ready-to-drink and beer in summer,
// wine around the autumn/winter entertaining season.
var monthBase = map[string][12]int{
	"spirits":        {45, 40, 40, 40, 45, 45, 45, 45, 50, 55, 65, 80},
	"wine":           {45, 50, 45, 45, 50, 45, 40, 40, 50, 55, 70, 75},
	"beer":           {40, 45, 50, 55, 65, 70, 75, 70, 60, 55, 45, 45},
	"ready_to_drink": {35, 35, 45, 55, 70, 80, 80, 75, 60, 45, 35, 35},
	"non_alcoholic":  {70, 50, 45, 45, 50, 55, 55, 50, 45, 45, 45, 50},
}

// holidaySpikes adds short windows where demand departs from the month base:
// day-of-month ranges keyed by month.
type holidaySpike struct {
	month    time.Month
	firstDay int
	lastDay  int
	boost    int
	// categories hit by the spike; empty means all.
	categories []string
}

var holidaySpikes = []holidaySpike{
	{month: time.February, firstDay: 10, lastDay: 14, boost: 15, categories: []string{"wine", "spirits"}},
	{month: time.March, firstDay: 14, lastDay: 17, boost: 20, categories: []string{"beer", "spirits"}},
	{month: time.May, firstDay: 1, lastDay: 5, boost: 15, categories: []string{"spirits", "ready_to_drink"}},
	{month: time.July, firstDay: 1, lastDay: 4, boost: 15},
	{month: time.October, firstDay: 25, lastDay: 31, boost: 10},
	{month: time.November, firstDay: 20, lastDay: 30, boost: 15},
	{month: time.December, firstDay: 15, lastDay: 31, boost: 20},
}

const defaultSeasonalBase = 45

func seasonalBase(category string, asOf time.Time) int {
	base := defaultSeasonalBase
	if months, ok := monthBase[category]; ok {
		base = months[asOf.Month()-1]
	}
	for _, spike := range holidaySpikes {
		if spike.month != asOf.Month() || asOf.Day() < spike.firstDay || asOf.Day() > spike.lastDay {
			continue
		}
		if len(spike.categories) == 0 {
			base += spike.boost
			continue
		}
		for _, c := range spike.categories {
			if c == category {
				base += spike.boost
				break
			}
		}
	}
	return base
}
