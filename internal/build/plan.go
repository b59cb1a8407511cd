package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"abb/internal/chapters"
	"abb/internal/deps"
	"abb/internal/ffmpeg"
	"abb/internal/logging"
	"abb/internal/manifest"
	"abb/internal/media/ffprobe"
	"abb/internal/services"
)

type plan struct {
	sources  []string
	chapters []chapters.Chapter
	total    time.Duration
	title    string
}

// plan resolves the manifest into chapters. Durations are probed only when
// probe is set; otherwise spans are left at zero length.
func (o *Orchestrator) plan(ctx context.Context, logger *slog.Logger, mode Mode, input, manifestPath, output string, probe bool) (plan, error) {
	probeBinary := deps.ResolveFFprobe(o.cfg.FFmpegBinary(), o.cfg.FFprobeBinary())
	if mode == ModeFile {
		return o.planFile(ctx, input, manifestPath, output, probeBinary, probe)
	}

	items, unused, err := o.builder.ResolveFile(input, manifestPath)
	if err != nil {
		return plan{}, err
	}
	if len(unused) > 0 {
		names := make([]string, 0, len(unused))
		for _, entry := range unused {
			names = append(names, entry.Name)
		}
		logger.Warn("media files not listed in manifest are skipped",
			logging.Int("count", len(unused)),
			logging.String("files", strings.Join(names, ", ")))
	}

	p := plan{title: filepath.Base(input)}
	spans := make([]chapters.Span, 0, len(items))
	var first manifest.Item
	var firstCodec string
	for _, item := range items {
		if item.Entry.Path == output {
			return plan{}, services.Wrap(services.ErrValidation, "build", "plan",
				fmt.Sprintf("%s line %d: output would overwrite a source file", manifestPath, item.Line), nil)
		}
		var d time.Duration
		if probe {
			audio, err := ffprobe.ProbeAudio(ctx, o.runner, probeBinary, item.Entry.Path)
			if err != nil {
				return plan{}, fmt.Errorf("%s line %d: %w", manifestPath, item.Line, err)
			}
			// The concat demuxer decodes every file with the first file's codec.
			switch {
			case audio.Codec == "":
			case firstCodec == "":
				first, firstCodec = item, audio.Codec
			case audio.Codec != firstCodec:
				return plan{}, services.Wrap(services.ErrValidation, "build", "plan",
					fmt.Sprintf("%s line %d: %s is %s but %s (line %d) is %s; convert the files to one codec before building",
						manifestPath, item.Line, item.Entry.Name, audio.Codec, first.Entry.Name, first.Line, firstCodec), nil)
			}
			d = audio.Duration
		}
		p.sources = append(p.sources, item.Entry.Path)
		spans = append(spans, chapters.Span{Title: item.Title, Duration: d, Line: item.Line})
		p.total += d
	}
	p.chapters = chapters.Sequential(spans)
	return p, nil
}

func (o *Orchestrator) planFile(ctx context.Context, input, manifestPath, output, probeBinary string, probe bool) (plan, error) {
	if input == output {
		return plan{}, services.Wrap(services.ErrValidation, "build", "plan", "output would overwrite the input file", nil)
	}
	markers, err := chapters.ParseFile(manifestPath)
	if err != nil {
		return plan{}, err
	}
	var end time.Duration
	if probe {
		if end, err = ffprobe.Duration(ctx, o.runner, probeBinary, input); err != nil {
			return plan{}, err
		}
	}
	chs, err := chapters.FromMarkers(markers, end)
	if err != nil {
		return plan{}, fmt.Errorf("%s: %w", manifestPath, err)
	}
	name := filepath.Base(input)
	return plan{
		sources:  []string{input},
		chapters: chs,
		total:    end,
		title:    strings.TrimSuffix(name, filepath.Ext(name)),
	}, nil
}

// prepare writes the concat list and chapter metadata into workDir.
func (o *Orchestrator) prepare(logger *slog.Logger, workDir string, mode Mode, req Request, p plan, tempOutput string) (ffmpeg.Job, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = p.title
	}
	metadataPath := filepath.Join(workDir, "chapters.txt")
	if err := writeMetadata(metadataPath, chapters.Metadata{
		Title:    title,
		Artist:   strings.TrimSpace(req.Author),
		Chapters: p.chapters,
	}); err != nil {
		return ffmpeg.Job{}, err
	}

	job := ffmpeg.Job{
		Metadata: metadataPath,
		Output:   tempOutput,
		Progress: true,
		Verbose:  req.Verbose,
	}
	if mode == ModeDirectory {
		job.Concat = true
		job.Source = filepath.Join(workDir, "inputs.txt")
		if err := ffmpeg.WriteConcatFile(job.Source, p.sources); err != nil {
			return ffmpeg.Job{}, err
		}
	} else {
		job.Source = p.sources[0]
	}

	reencode := o.cfg.Encoding.Reencode && !req.NoReencode
	job.Codec = ffmpeg.Codec{Copy: !reencode, Encoder: o.cfg.AudioEncoder(), Bitrate: o.cfg.Encoding.Bitrate}
	if b := strings.TrimSpace(req.Bitrate); b != "" {
		job.Codec.Bitrate = b
	}
	if !reencode {
		logger.Warn("stream copy instead of re-encoding may produce an unplayable file when inputs differ in sample rate or channels")
	}
	return job, nil
}
