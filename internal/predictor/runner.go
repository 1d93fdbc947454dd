// Package predictor invokes the two external ML classifier binaries, one
// for physical symptoms and one for mental health. Each is a black box:
// symptom JSON on stdin, advisory text on stdout.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNotConfigured means the binary path for the requested model was not
// set. Callers translate this to "service unavailable" rather than a hard
// failure.
var ErrNotConfigured = errors.New("predictor not configured")

const defaultTimeout = 30 * time.Second

// Runner executes the predictor binaries as subprocesses.
type Runner struct {
	physicalPath string
	mentalPath   string
	timeout      time.Duration
	logger       *slog.Logger
}

func NewRunner(physicalPath, mentalPath string, timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{
		physicalPath: physicalPath,
		mentalPath:   mentalPath,
		timeout:      timeout,
		logger:       logger.With("component", "predictor"),
	}
}

type physicalInput struct {
	Symptoms []string `json:"symptoms"`
}

type mentalInput struct {
	Symptoms []string `json:"symptoms"`
	Age      int      `json:"age"`
	Gender   string   `json:"gender"`
}

// Physical runs the physical-symptom classifier.
func (r *Runner) Physical(ctx context.Context, symptoms []string) (string, error) {
	if r.physicalPath == "" {
		return "", ErrNotConfigured
	}
	return r.run(ctx, r.physicalPath, physicalInput{Symptoms: symptoms})
}

// Mental runs the mental-health classifier. Age and gender are part of its
// input contract.
func (r *Runner) Mental(ctx context.Context, symptoms []string, age int, gender string) (string, error) {
	if r.mentalPath == "" {
		return "", ErrNotConfigured
	}
	return r.run(ctx, r.mentalPath, mentalInput{Symptoms: symptoms, Age: age, Gender: gender})
}

// PredictPhysical adapts Physical for the chat pipeline.
func (r *Runner) PredictPhysical(ctx context.Context, symptoms []string) (string, error) {
	return r.Physical(ctx, symptoms)
}

func (r *Runner) run(ctx context.Context, path string, input any) (string, error) {
	if _, err := exec.LookPath(path); err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrNotConfigured, path)
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal predictor input: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		r.logger.Error("predictor failed", "path", path, "error", err, "stderr", stderr.String())
		return "", fmt.Errorf("run predictor: %w", err)
	}
	r.logger.Debug("predictor finished", "path", path, "duration", time.Since(start))

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("predictor produced no output")
	}
	return out, nil
}
