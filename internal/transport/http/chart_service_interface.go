package http

import (
	"context"

	"astrochart/internal/services"
	api "astrochart/pkg/contracts/api/v1"
)

// ChartServiceInterface defines the chart operations needed by ChartHandler
type ChartServiceInterface interface {
	ParseChartRequest(raw []byte) (services.ChartInput, error)
	Calculate(ctx context.Context, in services.ChartInput) (*api.ChartResult, error)
}

var _ ChartServiceInterface = (*services.ChartService)(nil)
