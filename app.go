package main

import (
	"context"
	"fmt"
	"log"

	"github.com/fgam/spatialam/pkg/config"
	"github.com/fgam/spatialam/pkg/engine"
	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/graph"
	"github.com/fgam/spatialam/pkg/network"
	"github.com/fgam/spatialam/pkg/program"
)

// App runs the planning pipeline: source, design, graph analysis and the
// program record stream.
type App struct {
	cfg     config.Config
	engine  *engine.Engine
	builder *program.Builder
}

// EvalErrorData is a serializable evaluation error or warning.
type EvalErrorData struct {
	Line    int    `codec:"line" json:"line"`
	Col     int    `codec:"col" json:"col"`
	Message string `codec:"message" json:"message"`
}

// PlanResult is the full output of one planning run.
type PlanResult struct {
	Design   *engine.Design   `codec:"design" json:"design"`
	Analysis *graph.Analysis  `codec:"analysis" json:"analysis"`
	Program  *program.Program `codec:"program" json:"program"`
	Errors   []EvalErrorData  `codec:"errors" json:"errors"`
	Warnings []EvalErrorData  `codec:"warnings" json:"warnings"`
}

// TrailResult is the longest continuous trail through a design.
type TrailResult struct {
	Trail    network.Trail `codec:"trail" json:"trail"`
	Points   geom.Polyline `codec:"points" json:"points"`
	Complete bool          `codec:"complete" json:"complete"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App using cfg.
func NewAppWithConfig(cfg config.Config) *App {
	return &App{
		cfg:     cfg,
		engine:  engine.NewEngineWithTimeout(cfg.Engine.Timeout),
		builder: program.NewBuilder(cfg.ProgramOptions(), cfg.Plane, cfg.Motion),
	}
}

// Config returns the configuration the App was built with.
func (a *App) Config() config.Config {
	return a.cfg
}

// Evaluate turns source into a design. Evaluation problems are returned
// as EvalErrorData; the design is nil when there are any.
func (a *App) Evaluate(source string) (*engine.Design, []EvalErrorData) {
	d, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		return nil, []EvalErrorData{{Message: err.Error()}}
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			out = append(out, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, out
	}
	return d, nil
}

// Analyze builds the connectivity graph for d and runs clustering, pairing
// and chain building over it.
func (a *App) Analyze(d *engine.Design) graph.Analysis {
	return graph.New(d.Lines(), a.cfg.Graph).Analyze()
}

// Plan evaluates source and assembles its program. Graph diagnostics and
// skipped segments become warnings; only evaluation failures and
// unsupported orientations are errors.
func (a *App) Plan(source string) PlanResult {
	result := PlanResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	d, evalErrs := a.Evaluate(source)
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		return result
	}
	result.Design = d

	analysis := a.Analyze(d)
	result.Analysis = &analysis
	for _, diag := range analysis.Diagnostics {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: diag.Error()})
	}

	prog, err := a.builder.Build(d.Polylines())
	if err != nil {
		log.Printf("Build error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "program build failed: " + err.Error()})
		return result
	}
	result.Program = prog
	for _, diag := range prog.Diagnostics {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: diag.Error()})
	}
	return result
}

// LongestTrail searches d for its longest continuous trail. When the search
// is cut short the best trail found so far is returned with Complete unset.
func (a *App) LongestTrail(ctx context.Context, d *engine.Design) (TrailResult, error) {
	n := network.New(d.Lines(), a.cfg.Network)
	trail, err := n.LongestTrail(ctx)
	res := TrailResult{Trail: trail, Points: n.Polyline(trail), Complete: err == nil}
	if err != nil && ctx.Err() != nil {
		return res, fmt.Errorf("longest trail: %w", err)
	}
	if err != nil {
		log.Printf("Longest trail search stopped early: %v", err)
	}
	return res, nil
}
