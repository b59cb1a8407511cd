package ffmpeg

// Codec selects between re-encoding and stream copy.
type Codec struct {
	Copy    bool
	Encoder string
	Bitrate string
}

// Job describes a single chaptered mux. Source is a concat list when Concat
// is set and a media file otherwise; Metadata is an FFMETADATA1 file.
type Job struct {
	Source   string
	Concat   bool
	Metadata string
	Output   string
	Codec    Codec
	Progress bool
	Verbose  bool
}

// BuildArgs renders the ffmpeg argument list for job, excluding the binary.
func BuildArgs(job Job) []string {
	args := make([]string, 0, 32)
	args = append(args, "-hide_banner", "-nostdin", "-xerror")
	if job.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}

	if job.Concat {
		args = append(args, "-f", "concat", "-safe", "0")
	}
	args = append(args, "-i", job.Source)
	args = append(args, "-i", job.Metadata)

	args = append(args, "-map", "0:a", "-map_metadata", "1", "-map_chapters", "1")
	if job.Codec.Copy {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-c:a", job.Codec.Encoder)
		if job.Codec.Bitrate != "" {
			args = append(args, "-b:a", job.Codec.Bitrate)
		}
	}

	if job.Progress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	args = append(args, "-y", job.Output)
	return args
}
