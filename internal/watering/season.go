// Package watering implements the watering schedule computation: seasonal
// and pot-size adjustment of a plant's base interval, and classification of
// a due date into a lateness status. All functions are pure; the caller
// supplies every timestamp, including "now".
package watering

import "time"

// SeasonName identifies one of the four calendar seasons.
type SeasonName string

// Seasons (northern hemisphere).
const (
	Winter SeasonName = "winter"
	Spring SeasonName = "spring"
	Summer SeasonName = "summer"
	Autumn SeasonName = "autumn"
)

// Season couples a season with the generic watering multiplier applied when
// a plant has no species-specific seasonal data. A multiplier > 1 lengthens
// the interval (water less often), < 1 shortens it.
type Season struct {
	Name       SeasonName
	Multiplier float64
}

// CurrentSeason maps a date to its season by calendar month:
// Dec–Feb winter, Mar–May spring, Jun–Aug summer, Sep–Nov autumn.
// Winter slows watering (1.5x), summer speeds it up (0.75x).
func CurrentSeason(t time.Time) Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return Season{Name: Winter, Multiplier: 1.5}
	case time.March, time.April, time.May:
		return Season{Name: Spring, Multiplier: 1.0}
	case time.June, time.July, time.August:
		return Season{Name: Summer, Multiplier: 0.75}
	default:
		return Season{Name: Autumn, Multiplier: 1.0}
	}
}
