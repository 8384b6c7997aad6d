package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/record"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no steps")
	ErrUnknownParam  = errors.New("automation: unknown sweep parameter")
)

// Scenario defines a scripted recording: a starting surface and a sequence
// of ticks, resizes and theme switches.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Theme       string `yaml:"theme"`
	Format      string `yaml:"format"`
	Seed        int64  `yaml:"seed"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single step in a scenario. Resize and theme changes apply before
// the step's ticks; SaveAs writes a still of the surface after them.
type Step struct {
	Resize *Size  `yaml:"resize,omitempty"`
	Theme  string `yaml:"theme,omitempty"`
	Ticks  int    `yaml:"ticks"`
	SaveAs string `yaml:"save_as,omitempty"`
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// RunScenario plays every step against a fresh recorder. The recorder is
// returned even on error so partial output can be inspected.
func RunScenario(ctx context.Context, scenario *Scenario, cfg rain.Config, logger *log.Logger) (*record.Recorder, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	dark, err := rain.ParseTheme(scenario.Theme)
	if err != nil {
		return nil, err
	}
	format := record.FormatGIF
	if scenario.Format != "" {
		if format, err = record.ParseFormat(scenario.Format); err != nil {
			return nil, err
		}
	}
	if scenario.Seed != 0 {
		cfg.Seed = scenario.Seed
	}

	rec, err := record.New(cfg, record.Options{
		Width:   scenario.Width,
		Height:  scenario.Height,
		Dark:    dark,
		Format:  format,
		Capture: format == record.FormatGIF,
	})
	if err != nil {
		return nil, err
	}
	rec.Start()

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		logger.Printf("step %d/%d: %d ticks", i+1, len(scenario.Steps), step.Ticks)

		if step.Resize != nil {
			if err := rec.Resize(step.Resize.Width, step.Resize.Height); err != nil {
				return rec, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if step.Theme != "" {
			d, err := rain.ParseTheme(step.Theme)
			if err != nil {
				return rec, fmt.Errorf("step %d: %w", i+1, err)
			}
			rec.SetTheme(d)
		}
		if step.Ticks < 0 {
			return rec, fmt.Errorf("step %d: %w", i+1, record.ErrTicks)
		}
		rec.Step(step.Ticks)

		if step.SaveAs != "" {
			if err := snapshot(rec, step.SaveAs); err != nil {
				return rec, fmt.Errorf("step %d: %w", i+1, err)
			}
			logger.Printf("step %d/%d: saved %s", i+1, len(scenario.Steps), step.SaveAs)
		}
	}
	rec.Stop()
	return rec, nil
}

// snapshot writes the current surface: SVG for vector recordings, PNG
// otherwise.
func snapshot(rec *record.Recorder, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if rec.Format() == record.FormatSVG {
		err = rec.EncodeSVG(f)
	} else {
		err = rec.EncodePNG(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ParameterSweep runs headless recordings across a range of one tuning
// parameter.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Ticks     int
	Width     int
	Height    int
}

// SweepResult holds the metrics of one sweep point.
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

// RunSweep records every sweep point concurrently. Each point owns its own
// recorder and mock clock, so results are identical to a sequential run.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base rain.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, sweep.NumSteps)
	errs := make([]error, sweep.NumSteps)

	var wg sync.WaitGroup
	for i := 0; i < sweep.NumSteps; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			paramVal := sweep.ParamMin + float64(idx)*paramStep
			results[idx].ParamValue = paramVal
			results[idx].Metrics, errs[idx] = sweepPoint(ctx, sweep, base, paramVal)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func sweepPoint(ctx context.Context, sweep *ParameterSweep, base rain.Config, v float64) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := base
	if err := setParam(&cfg, sweep.ParamName, v); err != nil {
		return nil, err
	}

	rec, err := record.New(cfg, record.Options{Width: sweep.Width, Height: sweep.Height, Dark: true})
	if err != nil {
		return nil, fmt.Errorf("sweep %s=%.4f: %w", sweep.ParamName, v, err)
	}
	if err := rec.Run(sweep.Ticks); err != nil {
		return nil, fmt.Errorf("sweep %s=%.4f: %w", sweep.ParamName, v, err)
	}
	rec.Stop()
	return rec.Metrics(), nil
}

// SweepRange is the default [min, max] explored for a sweepable parameter.
// Every value in it passes rain.Config validation.
func SweepRange(name string) (lo, hi float64, err error) {
	switch name {
	case "increment":
		return 0.25, 2, nil
	case "reset_probability":
		return 0, 0.05, nil
	case "initial_position":
		return 0, 10, nil
	case "glyph_size":
		return 8, 24, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

func setParam(cfg *rain.Config, name string, v float64) error {
	switch name {
	case "increment":
		cfg.Increment = v
	case "reset_probability":
		cfg.ResetProbability = v
	case "initial_position":
		cfg.InitialPosition = v
	case "glyph_size":
		cfg.GlyphSize = int(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
