package logging

import "strings"

// ProgressSampler thins progress events down to one per percentage bucket,
// restarting whenever the stage changes.
type ProgressSampler struct {
	bucketSize float64
	lastStage  string
	lastBucket int
	reached    int
}

// NewProgressSampler returns a sampler with the given bucket width in
// percent. Non-positive widths fall back to 10%.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether percent opens a new bucket or stage is new.
// A negative percent means unknown and only a stage change emits.
func (s *ProgressSampler) ShouldLog(percent float64, stage string) bool {
	if s == nil {
		return true
	}
	stage = strings.TrimSpace(stage)
	emit := false
	if stage != "" && stage != s.lastStage {
		s.lastStage = stage
		s.lastBucket = -1
		s.reached = 0
		emit = true
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		reached := int(float64(bucket) * s.bucketSize)
		if percent >= 100 {
			bucket = int(100/s.bucketSize) + 1
			reached = 100
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			s.reached = reached
			emit = true
		}
	}
	return emit
}

// Reached returns the lower bound of the last emitted bucket, or 100 once
// completion has been seen.
func (s *ProgressSampler) Reached() int {
	if s == nil {
		return 0
	}
	return s.reached
}

// Reset forgets the stage and bucket history.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastStage = ""
	s.lastBucket = -1
	s.reached = 0
}
