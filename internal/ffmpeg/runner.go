package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"abb/internal/services"
)

// Command describes one external tool invocation.
type Command struct {
	Binary string
	Args   []string
	// OnStdout receives stdout line by line. When set, stdout is not
	// buffered into Result.
	OnStdout func(line string)
}

// String renders the command as a shell-like line for logs and dry runs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Binary))
	for _, arg := range c.Args {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\n'\"\\$`;&|<>()*?[]#~") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// Result captures the outcome of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

// Runner runs an external tool to completion. Implementations return an
// *ExitError when the tool exits non-zero.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner starts tools as real subprocesses in their own process group.
type ExecRunner struct {
	// Stderr receives a live copy of the tool's stderr when non-nil.
	Stderr io.Writer
	// WaitDelay bounds how long cancellation waits before killing the group.
	WaitDelay time.Duration
}

// Run starts cmd and waits for it. Cancelling ctx sends SIGTERM to the whole
// process group and SIGKILL once WaitDelay has elapsed.
func (r *ExecRunner) Run(ctx context.Context, command Command) (Result, error) {
	binary := strings.TrimSpace(command.Binary)
	if binary == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "ffmpeg", "run", "binary not configured", nil)
	}

	cmd := exec.CommandContext(ctx, binary, command.Args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return signalGroup(cmd, unix.SIGTERM)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	var stderr bytes.Buffer
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	} else {
		cmd.Stderr = &stderr
	}
	var stdout bytes.Buffer
	var stdoutPipe io.ReadCloser
	if command.OnStdout != nil {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return Result{}, fmt.Errorf("%s stdout pipe: %w", binary, err)
		}
		stdoutPipe = pipe
	} else {
		cmd.Stdout = &stdout
	}

	if err := cmd.Start(); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "ffmpeg", "start "+binary, "", err)
	}
	if stdoutPipe != nil {
		scanner := bufio.NewScanner(stdoutPipe)
		for scanner.Scan() {
			command.OnStdout(scanner.Text())
		}
		_, _ = io.Copy(io.Discard, stdoutPipe)
	}
	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		_ = signalGroup(cmd, unix.SIGKILL)
	}

	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s interrupted: %w", binary, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return result, &ExitError{Binary: binary, Code: result.ExitCode, Stderr: result.Stderr}
	}
	return result, services.Wrap(services.ErrExternalTool, "ffmpeg", "wait "+binary, "", waitErr)
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	err := unix.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
