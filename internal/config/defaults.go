package config

const (
	defaultManifestFilename = "list.txt"
	defaultHashPattern      = `-[A-Za-z0-9-]{11,}$`
	defaultAudioEncoder     = "auto"
	defaultBitrate          = "196k"
	defaultOutput           = "output.m4b"
	defaultWaitDelaySeconds = 5
	defaultHistoryFallback  = "~/.local/share/abb/history.db"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// defaultMediaExtensions lists the audio and video containers ffmpeg can
// demux that abb treats as sources, lowercase and dot-prefixed.
var defaultMediaExtensions = []string{
	".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a", ".m4b", ".wma", ".aiff", ".alac", ".opus", ".amr",
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".3gp", ".mpeg", ".mpg",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Manifest: Manifest{
			Filename:        defaultManifestFilename,
			HashPattern:     defaultHashPattern,
			MediaExtensions: DefaultMediaExtensions(),
		},
		Encoding: Encoding{
			AudioEncoder: defaultAudioEncoder,
			Bitrate:      defaultBitrate,
			Reencode:     true,
			Output:       defaultOutput,
		},
		Tools: Tools{
			FFmpeg:           "ffmpeg",
			FFprobe:          "ffprobe",
			WaitDelaySeconds: defaultWaitDelaySeconds,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultMediaExtensions returns a copy of the built-in media extension set.
func DefaultMediaExtensions() []string {
	return append([]string(nil), defaultMediaExtensions...)
}
