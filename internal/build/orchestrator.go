package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"abb/internal/chapters"
	"abb/internal/config"
	"abb/internal/ffmpeg"
	"abb/internal/history"
	"abb/internal/logging"
	"abb/internal/manifest"
	"abb/internal/preflight"
	"abb/internal/services"
)

// Request describes one build invocation.
type Request struct {
	Input      string
	Manifest   string
	Output     string
	Title      string
	Author     string
	Bitrate    string
	Overwrite  bool
	NoReencode bool
	DryRun     bool
	KeepTemp   bool
	Verbose    bool
}

// Report summarizes a build.
type Report struct {
	ID       string
	Mode     Mode
	Input    string
	Manifest string
	Output   string
	Chapters []chapters.Chapter
	Duration time.Duration
	Command  ffmpeg.Command
	TempDir  string
	DryRun   bool
}

// Recorder persists build outcomes.
type Recorder interface {
	Record(ctx context.Context, b history.Build) error
}

// Orchestrator turns a manifest into exactly one ffmpeg invocation.
type Orchestrator struct {
	cfg       *config.Config
	runner    ffmpeg.Runner
	logger    *slog.Logger
	recorder  Recorder
	builder   *manifest.Builder
	preflight bool
	now       func() time.Time
	newID     func() string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithRunner overrides the external tool runner.
func WithRunner(runner ffmpeg.Runner) Option {
	return func(o *Orchestrator) {
		if runner != nil {
			o.runner = runner
		}
	}
}

// WithLogger sets the logger used for build progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder records every build outcome, including failures.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = recorder
	}
}

// WithPreflight toggles input, output and binary checks before building.
func WithPreflight(enabled bool) Option {
	return func(o *Orchestrator) {
		o.preflight = enabled
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the build ID source.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// New constructs an orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("build: config is nil")
	}
	builder, err := manifest.NewBuilder(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "init", "manifest settings", err)
	}
	o := &Orchestrator{
		cfg:       cfg,
		runner:    &ffmpeg.ExecRunner{WaitDelay: cfg.WaitDelay()},
		logger:    logging.NewNop(),
		builder:   builder,
		preflight: true,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "build")
	return o, nil
}

// Build runs a complete build for req. On any failure no output is left at
// the target path and the previous file, if one existed, is untouched.
func (o *Orchestrator) Build(ctx context.Context, req Request) (report *Report, err error) {
	id := o.newID()
	started := o.now()
	report = &Report{ID: id, DryRun: req.DryRun}

	ctx = services.WithBuildID(ctx, id)
	logger := logging.WithContext(ctx, o.logger)

	defer func() {
		if req.DryRun {
			return
		}
		o.record(ctx, logger, report, started, err)
	}()

	input, err := filepath.Abs(strings.TrimSpace(req.Input))
	if err != nil {
		return report, fmt.Errorf("resolve input: %w", err)
	}
	report.Input = input
	mode, err := DetectMode(input)
	if err != nil {
		return report, err
	}
	report.Mode = mode
	ctx = services.WithMode(ctx, string(mode))
	logger = logging.WithContext(ctx, o.logger)

	manifestPath, err := o.manifestPath(req.Manifest, input, mode)
	if err != nil {
		return report, err
	}
	report.Manifest = manifestPath

	output, err := o.outputPath(req.Output)
	if err != nil {
		return report, err
	}
	report.Output = output

	if !req.DryRun {
		if err := checkOutput(output, req.Overwrite || o.cfg.Encoding.Overwrite); err != nil {
			return report, err
		}
		if o.preflight {
			if err := preflight.Err(preflight.RunAll(o.cfg, input, output)); err != nil {
				return report, err
			}
		}
	}

	layout, err := o.plan(ctx, logger, mode, input, manifestPath, output, !req.DryRun)
	if err != nil {
		return report, err
	}
	report.Chapters = layout.chapters
	report.Duration = layout.total

	var lock *outputLock
	if !req.DryRun {
		if lock, err = lockOutput(output); err != nil {
			return report, err
		}
		defer lock.release()
	}

	workDir, err := os.MkdirTemp("", "abb-"+shortID(id)+"-")
	if err != nil {
		return report, fmt.Errorf("create work directory: %w", err)
	}
	keep := req.KeepTemp || req.DryRun
	if keep {
		report.TempDir = workDir
	} else {
		defer os.RemoveAll(workDir)
	}

	job, err := o.prepare(logger, workDir, mode, req, layout, tempOutputPath(output, id))
	if err != nil {
		return report, err
	}

	progress := &ffmpeg.Progress{
		Total: layout.total,
		OnStep: func(percent int, position time.Duration) {
			logger.Info("encoding progress",
				logging.Int("percent", percent),
				logging.String("position", chapters.FormatTimestamp(position)))
		},
	}
	report.Command = ffmpeg.Command{
		Binary:   o.cfg.FFmpegBinary(),
		Args:     ffmpeg.BuildArgs(job),
		OnStdout: progress.Feed,
	}

	if req.DryRun {
		logger.Info("dry run, ffmpeg not started",
			logging.String("command", report.Command.String()),
			logging.String("work_dir", workDir))
		return report, nil
	}

	logger.Info("starting ffmpeg",
		logging.Int("chapters", len(layout.chapters)),
		logging.String("output", output),
		logging.Bool("reencode", !job.Codec.Copy))
	logger.Debug("ffmpeg command", logging.String("command", report.Command.String()))

	if _, err := o.runner.Run(ctx, report.Command); err != nil {
		_ = os.Remove(job.Output)
		return report, err
	}
	if err := finalize(job.Output, output); err != nil {
		_ = os.Remove(job.Output)
		return report, services.Wrap(services.ErrExternalTool, "build", "finalize", "", err)
	}
	if keep {
		logger.Info("temporary files kept", logging.String("work_dir", workDir))
	}
	logger.Info("audiobook written",
		logging.String("output", output),
		logging.Int("chapters", len(layout.chapters)),
		logging.Duration("duration", layout.total))
	return report, nil
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, report *Report, started time.Time, buildErr error) {
	if o.recorder == nil {
		return
	}
	entry := history.Build{
		ID:         report.ID,
		Mode:       string(report.Mode),
		Source:     report.Input,
		Manifest:   report.Manifest,
		Output:     report.Output,
		Chapters:   len(report.Chapters),
		Duration:   report.Duration,
		Status:     services.Category(buildErr),
		StartedAt:  started,
		FinishedAt: o.now(),
	}
	if buildErr != nil {
		entry.Error = buildErr.Error()
	}
	if err := o.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn("record build history failed", logging.Error(err))
	}
}

func (o *Orchestrator) manifestPath(requested, input string, mode Mode) (string, error) {
	name := strings.TrimSpace(requested)
	explicit := name != ""
	if !explicit {
		name = o.cfg.Manifest.Filename
	}
	candidates := []string{name}
	if !explicit && !filepath.IsAbs(name) {
		base := input
		if mode == ModeFile {
			base = filepath.Dir(input)
		}
		candidates = append(candidates, filepath.Join(base, name))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("%w: manifest %s", manifest.ErrInputNotFound, name)
}

func (o *Orchestrator) outputPath(requested string) (string, error) {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = o.cfg.Encoding.Output
	}
	expanded, err := config.ExpandPath(name)
	if err != nil {
		return "", fmt.Errorf("resolve output: %w", err)
	}
	if filepath.Ext(expanded) == "" {
		return "", services.Wrap(services.ErrValidation, "build", "output", "output needs a file extension: "+expanded, nil)
	}
	return expanded, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
