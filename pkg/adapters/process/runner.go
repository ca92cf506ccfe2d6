package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/generator"
)

// EnvGenerator names the environment variable carrying the generator kind.
const EnvGenerator = "SHIPYARD_GENERATOR"

// Request is the JSON document written to a generator's stdin.
type Request struct {
	Paths   []string       `json:"paths"`
	Sources []string       `json:"sources"`
	Config  map[string]any `json:"config"`
}

// Runner executes declared generators as local processes.
// Only commands from the loaded configuration are ever run.
type Runner struct {
	baseDir string
	logger  *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger configures a logger for the runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a new process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Definition turns a declared generator into a catalog entry.
func (r *Runner) Definition(cfg GeneratorConfig) (generator.Definition, error) {
	for name, typ := range cfg.Fields {
		if typ == nil {
			return generator.Definition{}, fmt.Errorf("generator %s: field %s has no type", cfg.Name, name)
		}
	}
	return generator.Definition{
		Kind:        domain.GeneratorKind(cfg.Name),
		Filename:    cfg.Filename,
		Description: cfg.Description,
		Schema:      cfg.Fields,
		Defaults:    cfg.Defaults,
		Routine:     r.Routine(cfg),
	}, nil
}

// Definitions converts every declared generator.
func (r *Runner) Definitions(cfgs []GeneratorConfig) ([]generator.Definition, error) {
	defs := make([]generator.Definition, 0, len(cfgs))
	for _, cfg := range cfgs {
		def, err := r.Definition(cfg)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Routine returns a generator routine running cfg.Command.
// The process receives a Request on stdin and must write the archive to stdout.
func (r *Runner) Routine(cfg GeneratorConfig) generator.Routine {
	return func(ctx context.Context, paths, sources []string, gc domain.GeneratorConfig) ([]byte, error) {
		var values map[string]any
		if ext, ok := gc.(domain.ExternalConfig); ok {
			values = ext.Values
		}
		if values == nil {
			values = map[string]any{}
		}
		input, err := json.Marshal(Request{Paths: paths, Sources: sources, Config: values})
		if err != nil {
			return nil, fmt.Errorf("failed to encode generator input: %w", err)
		}
		return r.run(ctx, cfg, input)
	}
}

func (r *Runner) run(ctx context.Context, cfg GeneratorConfig, input []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(input)

	env := []string{fmt.Sprintf("%s=%s", EnvGenerator, cfg.Name)}
	for k, v := range cfg.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running generator process", "kind", cfg.Name, "command", cfg.Command)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generator process interrupted: %w", ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("execution failed: %v: %s", err, msg)
		}
		return nil, fmt.Errorf("execution failed: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("generator %s produced no output", cfg.Name)
	}
	return stdout.Bytes(), nil
}
