// Package registry evaluates a flake's registry attribute with the nix CLI.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// Runner executes an external command. It allows mocking nix in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// NixEvaluator implements domain.RegistryEvaluator by running
// `nix eval --json <flake>#<name>`.
type NixEvaluator struct {
	runner Runner
	nix    string
}

// New returns an evaluator that runs the nix binary found on PATH.
func New() *NixEvaluator {
	return &NixEvaluator{runner: execRunner{}, nix: "nix"}
}

// NewWithRunner returns an evaluator that runs commands through r.
func NewWithRunner(r Runner) *NixEvaluator {
	return &NixEvaluator{runner: r, nix: "nix"}
}

// Evaluate returns the registry tree. When rev is set the flake is
// evaluated at that commit instead of the working tree.
func (e *NixEvaluator) Evaluate(ctx context.Context, flake, name, rev string) (*domain.RegistrySnapshot, error) {
	ref, err := FlakeRef(flake, name, rev)
	if err != nil {
		return nil, err
	}

	stdout, stderr, err := e.runner.Run(ctx, e.nix, "eval", "--json", ref)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = "no output"
		}
		return nil, domain.NewError(domain.KindRegistry, "", fmt.Sprintf("nix eval %s failed: %s", ref, msg), err)
	}

	snap, err := domain.DecodeRegistry(name, stdout)
	if err != nil {
		return nil, err
	}
	snap.Rev = rev
	return snap, nil
}

// FlakeRef builds the installable passed to nix eval.
//
//	FlakeRef(".", "registry", "")        -> .#registry
//	FlakeRef(".", "registry", "abc123")  -> git+file:///abs/path?rev=abc123#registry
//	FlakeRef("github:o/r", "registry", "abc123") -> github:o/r?rev=abc123#registry
func FlakeRef(flake, name, rev string) (string, error) {
	if flake == "" {
		flake = "."
	}
	if rev == "" {
		return flake + "#" + name, nil
	}
	if isLocal(flake) {
		abs, err := filepath.Abs(flake)
		if err != nil {
			return "", domain.NewError(domain.KindRegistry, flake, "resolving flake path", err)
		}
		return fmt.Sprintf("git+file://%s?rev=%s#%s", filepath.ToSlash(abs), rev, name), nil
	}
	sep := "?"
	if strings.Contains(flake, "?") {
		sep = "&"
	}
	return flake + sep + "rev=" + rev + "#" + name, nil
}

func isLocal(flake string) bool {
	if strings.HasPrefix(flake, ".") || strings.HasPrefix(flake, "/") {
		return true
	}
	return !strings.Contains(flake, ":")
}
