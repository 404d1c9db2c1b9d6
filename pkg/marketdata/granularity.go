package marketdata

import (
	"fmt"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// AggSpec converts an engine granularity to the multiplier and timespan
// pair used by aggregate bar APIs. Providers that use a different
// interval notation convert from this pair.
func AggSpec(g types.Granularity) (int, models.Timespan, error) {
	switch g {
	case types.Granularity1m:
		return 1, models.Minute, nil
	case types.Granularity5m:
		return 5, models.Minute, nil
	case types.Granularity15m:
		return 15, models.Minute, nil
	case types.Granularity30m:
		return 30, models.Minute, nil
	case types.Granularity1h:
		return 1, models.Hour, nil
	case types.GranularityDaily:
		return 1, models.Day, nil
	default:
		return 0, "", fmt.Errorf("unsupported granularity: %s", g)
	}
}
