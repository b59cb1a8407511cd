package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"abb/internal/testsupport"
)

const stubFFprobe = `#!/bin/sh
cat <<'JSON'
{"streams":[{"index":0,"codec_type":"audio","duration":"2.000000"}],"format":{"duration":"2.000000"}}
JSON
`

// stubFFmpeg answers -encoders and otherwise creates its last argument, the
// output file, after reporting progress on stdout.
const stubFFmpeg = `#!/bin/sh
case "$*" in
*-encoders*)
	echo " A....D aac                  AAC (Advanced Audio Coding)"
	exit 0
	;;
esac
for arg; do last=$arg; done
printf 'out_time_us=1000000\nprogress=continue\nout_time_us=4000000\nprogress=end\n'
: > "$last"
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	ffmpeg     string
	ffprobe    string
	history    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "abb.toml"),
		ffmpeg:     filepath.Join(base, "bin", "ffmpeg"),
		ffprobe:    filepath.Join(base, "bin", "ffprobe"),
		history:    filepath.Join(base, "state", "history.db"),
	}
	writeScript(t, env.ffmpeg, stubFFmpeg)
	writeScript(t, env.ffprobe, stubFFprobe)
	env.writeConfig(t, true)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, historyEnabled bool) {
	t.Helper()
	content := fmt.Sprintf(`[encoding]
audio_encoder = "aac"
bitrate = "64k"

[tools]
ffmpeg = %q
ffprobe = %q
wait_delay_seconds = 1

[history]
enabled = %t
path = %q
`, e.ffmpeg, e.ffprobe, historyEnabled, e.history)
	testsupport.WriteText(t, e.configPath, content)
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	testsupport.WriteText(t, path, body)
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
