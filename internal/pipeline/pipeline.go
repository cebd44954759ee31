// Package pipeline runs one inventory pass: detect, generate, serialize and
// persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/go-tangra/go-tangra-hwreport/internal/codec"
	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
	"github.com/go-tangra/go-tangra-hwreport/internal/report"
	"github.com/go-tangra/go-tangra-hwreport/internal/sink"
)

// Stage names a step of a pass.
type Stage string

const (
	StageDetect    Stage = "detect"
	StageGenerate  Stage = "generate"
	StageSerialize Stage = "serialize"
	StagePersist   Stage = "persist"
)

// StageError reports the stage that failed a pass. Detection only fails
// when the pass is cancelled; adapter failures are reported through
// Result.Unknown instead.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Detector builds the hardware model. *collector.Builder implements it.
type Detector interface {
	Detect(ctx context.Context) (*hardware.HardwareInfo, error)
}

// Result is the outcome of a pass. It is kept when persisting fails so the
// write can be retried without detecting again.
type Result struct {
	Info    *hardware.HardwareInfo
	Report  *report.Report
	Format  string
	Data    []byte
	Unknown []hardware.Class
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFormat selects the serialization format; the default is JSON.
func WithFormat(format string) Option {
	return func(p *Pipeline) { p.format = format }
}

// WithLogger sets the pass logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// Pipeline wires a detector, a report generator and a sink.
type Pipeline struct {
	detector  Detector
	generator *report.Generator
	sink      sink.Sink
	format    string
	log       zerolog.Logger
}

// New returns a Pipeline. A nil sink makes Run stop after serializing.
func New(d Detector, g *report.Generator, s sink.Sink, opts ...Option) (*Pipeline, error) {
	if d == nil || g == nil {
		return nil, errors.New("pipeline needs a detector and a generator")
	}
	p := &Pipeline{
		detector:  d,
		generator: g,
		sink:      s,
		format:    codec.JSONName,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	c, err := codec.Get(p.format)
	if err != nil {
		return nil, err
	}
	p.format = c.Name()
	return p, nil
}

// Run performs one pass and persists the report at path. On a persist
// failure the Result is returned together with the *StageError.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	res, err := p.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Persist(ctx, res, path); err != nil {
		return res, err
	}
	return res, nil
}

// Build detects, generates and serializes without persisting.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	info, err := p.detector.Detect(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageDetect, Err: err}
	}
	if info == nil {
		return nil, &StageError{Stage: StageDetect, Err: errors.New("detector returned no model")}
	}

	unknown := info.UnknownClasses()
	for _, c := range unknown {
		p.log.Warn().Str("class", c.String()).Err(info.Unknown[c]).Msg("hardware class unknown in report")
	}

	rep := p.generator.Generate(info)
	if rep == nil {
		return nil, &StageError{Stage: StageGenerate, Err: errors.New("generator returned no report")}
	}

	data, err := report.Serialize(rep, p.format)
	if err != nil {
		return nil, &StageError{Stage: StageSerialize, Err: err}
	}

	p.log.Debug().Str("format", p.format).Int("bytes", len(data)).Int("unknown", len(unknown)).Msg("report built")
	return &Result{
		Info:    info,
		Report:  rep,
		Format:  p.format,
		Data:    data,
		Unknown: unknown,
	}, nil
}

// Persist writes a built report to the sink. It may be called again after
// a failure.
func (p *Pipeline) Persist(ctx context.Context, res *Result, path string) error {
	if p.sink == nil {
		return nil
	}
	if res == nil || res.Data == nil {
		return &StageError{Stage: StagePersist, Err: errors.New("no serialized report")}
	}
	if err := p.sink.Write(ctx, path, res.Data); err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("persist report")
		return &StageError{Stage: StagePersist, Err: err}
	}
	p.log.Info().Str("path", path).Msg("report persisted")
	return nil
}
