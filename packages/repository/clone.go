package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/go-git/go-git/v5"
)

// Cloner fetches a remote repository into an existing empty directory.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// CloneError reports a failed clone. Output holds whatever the git client
// printed and is meant for server-side logs only.
type CloneError struct {
	URL    string
	Output string
	Err    error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("cloning %s: %v", e.URL, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// NewCloner returns the cloner for method ("go-git" or "git").
func NewCloner(method string, depth int) (Cloner, error) {
	switch method {
	case "go-git", "":
		return &GoGitCloner{Depth: depth}, nil
	case "git":
		return &CLICloner{Depth: depth}, nil
	default:
		return nil, fmt.Errorf("unknown clone method %q", method)
	}
}

// GoGitCloner clones in-process with go-git.
type GoGitCloner struct {
	// Depth limits history; 0 clones everything.
	Depth int
}

func (c *GoGitCloner) Clone(ctx context.Context, url, dir string) error {
	slog.Info("Cloning", "url", url, "dir", dir, "method", "go-git")

	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: c.Depth,
	})
	if err != nil {
		return &CloneError{URL: url, Err: err}
	}
	return nil
}

// CLICloner shells out to the git binary on PATH.
type CLICloner struct {
	Depth int
	// Binary overrides the git executable; empty means "git".
	Binary string
}

func (c *CLICloner) Clone(ctx context.Context, url, dir string) error {
	bin := c.Binary
	if bin == "" {
		bin = "git"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("git is not installed or not in PATH: %w", err)
	}

	args := []string{"clone"}
	if c.Depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(c.Depth))
	}
	args = append(args, "--", url, dir)

	slog.Info("Cloning", "url", url, "dir", dir, "method", "git")

	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &CloneError{URL: url, Output: string(output), Err: err}
	}
	return nil
}
