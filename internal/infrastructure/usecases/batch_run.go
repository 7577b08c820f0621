package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/sophialabs/apiprobe/internal/domain/extract"
	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
)

// ErrUnknownVariable indicates a batch over a variable the config does not define.
var ErrUnknownVariable = errors.New("variable is not defined in request config")

// BatchItem is the outcome of one batch iteration.
type BatchItem struct {
	Value     string          `json:"value"`
	HistoryID string          `json:"history_id,omitempty"`
	Status    int             `json:"status"`
	Data      jsonvalue.Value `json:"data,omitempty"`
	Found     bool            `json:"found"`
	Error     string          `json:"error,omitempty"`
}

// BatchResult collects every iteration of a batch run.
type BatchResult struct {
	ConfigID  int64       `json:"config_id"`
	Variable  string      `json:"variable"`
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// BatchRunUseCase runs a config once per value of one variable.
type BatchRunUseCase struct {
	run      *RunConfigUseCase
	throttle ports.Throttle
	rate     float64
	burst    int
	logger   ports.Logger
}

// NewBatchRunUseCase creates a new use case. Calls to the same host are paced
// at rate per second with the given burst.
func NewBatchRunUseCase(run *RunConfigUseCase, throttle ports.Throttle, rate float64, burst int, logger ports.Logger) *BatchRunUseCase {
	return &BatchRunUseCase{
		run:      run,
		throttle: throttle,
		rate:     rate,
		burst:    burst,
		logger:   logger,
	}
}

// Execute iterates over every value of variable. Other variables use their
// first value. Failed iterations are reported per item; only setup errors and
// cancellation abort the batch.
func (uc *BatchRunUseCase) Execute(ctx context.Context, id int64, variable string) (*BatchResult, error) {
	cfg, err := uc.run.configs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request config %d: %w", id, err)
	}

	src, ok := cfg.Variables[variable]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}
	values, err := services.VariableValues(ctx, src, uc.run.lists)
	if err != nil {
		return nil, fmt.Errorf("failed to load values of %q: %w", variable, err)
	}

	host := hostOf(cfg.Route)
	result := &BatchResult{ConfigID: id, Variable: variable, Items: make([]BatchItem, 0, len(values))}

	uc.logger.Info("batch run started", "id", id, "variable", variable, "values", len(values), "host", host)

	for i, value := range values {
		if err := uc.throttle.Wait(ctx, host, uc.rate, uc.burst); err != nil {
			return result, fmt.Errorf("batch run interrupted after %d of %d: %w", i, len(values), err)
		}

		item := BatchItem{Value: value}
		req, err := uc.run.prepare(ctx, cfg, map[string]int{variable: i})
		if err == nil {
			var res *TestAPIResult
			res, err = uc.run.testAPI.Execute(ctx, req)
			if err == nil {
				item.HistoryID = res.HistoryID
				item.Status = res.UpstreamStatus
				item.Data = res.Value
				item.Found = res.Found
			}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("batch run interrupted after %d of %d: %w", i, len(values), ctxErr)
			}
			item.Error = err.Error()
			var engineErr *extract.Error
			if !errors.As(err, &engineErr) {
				uc.logger.Warn("batch iteration failed", "id", id, "value", value, "error", err)
			}
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}

	uc.logger.Info("batch run finished", "id", id, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

func hostOf(route string) string {
	u, err := url.Parse(services.NormalizeURL(route))
	if err != nil || u.Host == "" {
		return route
	}
	return u.Host
}
