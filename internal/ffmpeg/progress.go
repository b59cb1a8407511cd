package ffmpeg

import (
	"strconv"
	"strings"
	"time"

	"abb/internal/logging"
)

// Progress turns "-progress pipe:1" key=value lines into coarse percentage
// steps against a known total duration.
type Progress struct {
	Total time.Duration
	Step  int
	// OnStep is called once per crossed step with the percentage reached.
	OnStep func(percent int, position time.Duration)

	position time.Duration
	sampler  *logging.ProgressSampler
	done     bool
}

// Feed consumes one line of progress output.
func (p *Progress) Feed(line string) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.advance(time.Duration(us) * time.Microsecond)
		}
	case "out_time":
		if d, ok := parseClock(value); ok {
			p.advance(d)
		}
	case "progress":
		if value == "end" && !p.done {
			p.done = true
			p.report(100)
		}
	}
}

// Position returns the latest output timestamp seen.
func (p *Progress) Position() time.Duration {
	return p.position
}

func (p *Progress) advance(position time.Duration) {
	if position <= p.position {
		return
	}
	p.position = position
	if p.Total <= 0 {
		return
	}
	percent := int(float64(position) / float64(p.Total) * 100)
	if percent > 99 {
		percent = 99
	}
	p.report(percent)
}

func (p *Progress) report(percent int) {
	if p.sampler == nil {
		step := p.Step
		if step <= 0 {
			step = 10
		}
		p.sampler = logging.NewProgressSampler(float64(step))
		// 0% is implied by the encode starting.
		p.sampler.ShouldLog(0, "")
	}
	if !p.sampler.ShouldLog(float64(percent), "") {
		return
	}
	if p.OnStep != nil {
		p.OnStep(p.sampler.Reached(), p.position)
	}
}

func parseClock(value string) (time.Duration, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds*float64(time.Second))
	return d, true
}
