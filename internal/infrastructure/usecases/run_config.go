package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/sophialabs/apiprobe/internal/domain/datalist"
	"github.com/sophialabs/apiprobe/internal/domain/requestconfig"
	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
)

// ErrPromptRender indicates the prompt template of a config could not be rendered.
var ErrPromptRender = errors.New("failed to render prompt")

// RunConfigUseCase executes a saved request config.
type RunConfigUseCase struct {
	configs  requestconfig.Repository
	lists    datalist.Repository
	renderer ports.PromptRenderer
	testAPI  *TestAPIUseCase
	logger   ports.Logger
}

// NewRunConfigUseCase creates a new use case.
func NewRunConfigUseCase(
	configs requestconfig.Repository,
	lists datalist.Repository,
	renderer ports.PromptRenderer,
	testAPI *TestAPIUseCase,
	logger ports.Logger,
) *RunConfigUseCase {
	return &RunConfigUseCase{
		configs:  configs,
		lists:    lists,
		renderer: renderer,
		testAPI:  testAPI,
		logger:   logger,
	}
}

// Execute loads config id, picks variable values by selections (index per
// variable, default 0), renders the prompt and performs the test call.
func (uc *RunConfigUseCase) Execute(ctx context.Context, id int64, selections map[string]int) (*TestAPIResult, error) {
	cfg, err := uc.configs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request config %d: %w", id, err)
	}

	req, err := uc.prepare(ctx, cfg, selections)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("running request config", "id", id, "name", cfg.Name)
	return uc.testAPI.Execute(ctx, req)
}

// prepare turns a config and a variable selection into a test request.
func (uc *RunConfigUseCase) prepare(ctx context.Context, cfg *requestconfig.RequestConfig, selections map[string]int) (TestAPIRequest, error) {
	promptKey, promptText := cfg.PromptKey()

	vars, err := services.ResolveVariables(ctx, promptText, cfg.Variables, selections, uc.lists)
	if err != nil {
		return TestAPIRequest{}, fmt.Errorf("failed to resolve variables of %q: %w", cfg.Name, err)
	}

	rendered, err := uc.renderer.Render("", promptText, ports.PromptInput{
		Vars:   vars,
		Fields: cfg.AdditionalFields,
	})
	if err != nil {
		return TestAPIRequest{}, fmt.Errorf("%w of %q: %v", ErrPromptRender, cfg.Name, err)
	}

	req := TestAPIRequest{
		Route:    cfg.Route,
		Method:   cfg.EffectiveMethod(),
		Headers:  cfg.Headers,
		Field:    cfg.Field,
		Schema:   cfg.Schema,
		ConfigID: cfg.ID,
	}

	if req.Method != http.MethodGet {
		body, err := json.Marshal(services.BuildBody(promptKey, rendered, cfg.AdditionalFields))
		if err != nil {
			return TestAPIRequest{}, fmt.Errorf("failed to encode body of %q: %w", cfg.Name, err)
		}
		req.Body = body
	}
	return req, nil
}
