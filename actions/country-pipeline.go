package actions

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/relloyd/country-metrics/artifact"
	"github.com/relloyd/country-metrics/components"
	"github.com/relloyd/country-metrics/config"
	c "github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/pipe"
	"github.com/relloyd/country-metrics/stats"
)

// CountryPipeline binds the four stages to one validated configuration and artifact store.
type CountryPipeline struct {
	Log            logger.Logger
	Config         config.Pipeline
	Store          artifact.Store
	HttpClient     *http.Client                     // optional
	OpenConnection components.OpenConnectionFunc    // optional
	StatsOptions   []func(t *stats.RunStatsManager) // passed to each run
}

// NewCountryPipeline validates cfg and creates its artifact store.
func NewCountryPipeline(log logger.Logger, cfg config.Pipeline) (*CountryPipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := artifact.NewStore(log, cfg.Artifacts)
	if err != nil {
		return nil, err
	}
	log.Debug("artifact store: ", store)
	return &CountryPipeline{Log: log, Config: cfg, Store: store}, nil
}

func (p *CountryPipeline) Cleanup(ctx context.Context, log logger.Logger) (components.CleanupResult, error) {
	return components.NewCleanup(ctx, &components.CleanupConfig{
		Log:       log,
		Name:      c.StepNameCleanup,
		Store:     p.Store,
		Locations: []string{p.Config.Artifacts.Raw, p.Config.Artifacts.Final},
	})
}

func (p *CountryPipeline) Extract(ctx context.Context, log logger.Logger) (components.ExtractResult, error) {
	return components.NewCountryExtract(ctx, &components.CountryExtractConfig{
		Log:            log,
		Name:           c.StepNameExtract,
		HttpClient:     p.HttpClient,
		Endpoint:       p.Config.Source.Endpoint,
		Timeout:        time.Duration(p.Config.Source.TimeoutSeconds) * time.Second,
		UserAgent:      p.Config.Source.UserAgent,
		Store:          p.Store,
		OutputLocation: p.Config.Artifacts.Raw,
	})
}

func (p *CountryPipeline) Transform(ctx context.Context, log logger.Logger) (components.TransformResult, error) {
	return components.NewDensityTransform(ctx, &components.DensityTransformConfig{
		Log:            log,
		Name:           c.StepNameTransform,
		Store:          p.Store,
		InputLocation:  p.Config.Artifacts.Raw,
		OutputLocation: p.Config.Artifacts.Final,
	})
}

func (p *CountryPipeline) Load(ctx context.Context, log logger.Logger) (components.LoadResult, error) {
	return components.NewTableRefreshLoad(ctx, &components.TableRefreshLoadConfig{
		Log:            log,
		Name:           c.StepNameLoad,
		Store:          p.Store,
		InputLocation:  p.Config.Artifacts.Final,
		Connection:     p.Config.Store,
		OpenConnection: p.OpenConnection,
	})
}

// Step returns the named stage as a pipe.Step.
func (p *CountryPipeline) Step(name string) (pipe.Step, error) {
	var f pipe.StepFunc
	switch name {
	case c.StepNameCleanup:
		f = func(ctx context.Context, log logger.Logger) (int64, error) {
			res, err := p.Cleanup(ctx, log)
			return int64(len(res.Deleted)), err
		}
	case c.StepNameExtract:
		f = func(ctx context.Context, log logger.Logger) (int64, error) {
			res, err := p.Extract(ctx, log)
			return int64(res.Rows), err
		}
	case c.StepNameTransform:
		f = func(ctx context.Context, log logger.Logger) (int64, error) {
			res, err := p.Transform(ctx, log)
			return int64(res.Rows), err
		}
	case c.StepNameLoad:
		f = func(ctx context.Context, log logger.Logger) (int64, error) {
			res, err := p.Load(ctx, log)
			return int64(res.Rows), err
		}
	default:
		return pipe.Step{}, fmt.Errorf("unknown stage %q, expected one of %v", name, c.StepNames)
	}
	return pipe.Step{Name: name, Func: f}, nil
}

// Steps returns every stage in run order.
func (p *CountryPipeline) Steps() []pipe.Step {
	steps := make([]pipe.Step, 0, len(c.StepNames))
	for _, name := range c.StepNames {
		s, _ := p.Step(name)
		steps = append(steps, s)
	}
	return steps
}

// NewRun prepares a run of the given stages, or of every stage when none are named.
// Stages always run in pipeline order and may be named once each.
func (p *CountryPipeline) NewRun(stages ...string) (*pipe.Run, error) {
	if len(stages) == 0 {
		return pipe.NewRun(p.Log, p.Steps(), p.StatsOptions...), nil
	}
	requested := make(map[string]bool, len(stages))
	for _, name := range stages {
		if _, err := p.Step(name); err != nil {
			return nil, err
		}
		if requested[name] {
			return nil, fmt.Errorf("stage %q named more than once", name)
		}
		requested[name] = true
	}
	steps := make([]pipe.Step, 0, len(stages))
	for _, name := range c.StepNames {
		if requested[name] {
			s, _ := p.Step(name)
			steps = append(steps, s)
		}
	}
	return pipe.NewRun(p.Log, steps, p.StatsOptions...), nil
}

// Run executes the named stages, or a full run, and returns the first failure.
func (p *CountryPipeline) Run(ctx context.Context, stages ...string) error {
	r, err := p.NewRun(stages...)
	if err != nil {
		return err
	}
	return r.Execute(ctx)
}
