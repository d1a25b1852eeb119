// Package gnubg drives the GNU Backgammon command line and turns its text
// replies into structured move and cube recommendations.
//
// Protocol overview:
//   - gnubg is started once per request in tty-less mode
//   - a fixed list of commands is written to its stdin, one per line
//   - everything it prints is read back and parsed
//   - a hard timeout bounds the whole exchange
package gnubg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when gnubg does not finish within the timeout.
var ErrTimeout = errors.New("gnubg timed out")

// Runner executes a command script and returns what gnubg printed.
type Runner interface {
	Run(ctx context.Context, commands []string) (string, error)
}

// RunnerOptions configures an ExecRunner.
type RunnerOptions struct {
	Path    string        // gnubg binary
	Args    []string      // extra arguments
	Timeout time.Duration // hard limit per request
	DryRun  bool          // echo the script instead of running gnubg
}

// DefaultRunnerOptions returns sensible defaults.
func DefaultRunnerOptions() RunnerOptions {
	return RunnerOptions{
		Path:    "gnubg",
		Args:    []string{"-t", "-q"},
		Timeout: 8 * time.Second,
	}
}

// ExecRunner runs gnubg as a subprocess.
type ExecRunner struct {
	options RunnerOptions
}

// NewExecRunner creates a subprocess runner.
func NewExecRunner(opts RunnerOptions) *ExecRunner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRunnerOptions().Timeout
	}
	return &ExecRunner{options: opts}
}

// Script joins commands into the text written to gnubg's stdin.
func Script(commands []string) string {
	return strings.Join(commands, "\n") + "\n"
}

// Run starts gnubg, feeds it the script and returns stdout and stderr
// combined.
func (r *ExecRunner) Run(ctx context.Context, commands []string) (string, error) {
	script := Script(commands)
	if r.options.DryRun {
		return "[DRY-RUN]\n" + script, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.options.Timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.options.Path, r.options.Args...)
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out.String(), fmt.Errorf("%w after %s", ErrTimeout, r.options.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// gnubg exits non-zero on some stdin EOF paths; keep the output.
			return out.String(), nil
		}
		return out.String(), fmt.Errorf("running %s: %w", r.options.Path, err)
	}
	return out.String(), nil
}
