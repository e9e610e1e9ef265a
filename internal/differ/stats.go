package differ

import (
	"github.com/MeiTetsuH/diffchecker/internal/models"
)

// CountUnits tallies aligned units by kind.
func CountUnits[T any](units []models.AlignedUnit[T]) models.Stats {
	var stats models.Stats
	for _, u := range units {
		switch u.Kind {
		case models.UnitSame:
			stats.Same++
		case models.UnitAdded:
			stats.Added++
		case models.UnitRemoved:
			stats.Removed++
		case models.UnitModified:
			stats.Modified++
		}
	}
	return stats
}
