// Package gitrepo shells out to git. Every query is read-only.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/verctl/internal/application"
	"github.com/felixgeelhaar/verctl/internal/logger"
)

type Repo struct {
	// Dir is the work tree to run git in; empty means the current directory.
	Dir string
	// Exec overrides command execution in tests.
	Exec func(ctx context.Context, dir string, args []string) ([]byte, error)
	Log  *logger.Logger
}

var _ application.GitReader = Repo{}

func (r Repo) InsideWorkTree(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

func (r Repo) Head(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

func (r Repo) Branch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

func (r Repo) BranchesContaining(ctx context.Context, hash string) ([]string, error) {
	out, err := r.run(ctx, "branch", "--contains", hash)
	if err != nil {
		return nil, err
	}
	branches := make([]string, 0, 1)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "* "))
		if line == "" || strings.Contains(line, "HEAD") {
			continue
		}
		branches = append(branches, line)
	}
	return branches, nil
}

func (r Repo) MergedTags(ctx context.Context, pattern string) ([]string, error) {
	out, err := r.run(ctx, "tag", "--merged", "HEAD", "--list", pattern)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	tags := make([]string, 0, 4)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags, nil
}

func (r Repo) TagCommit(ctx context.Context, tag string) (string, error) {
	return r.run(ctx, "rev-list", "-n", "1", tag)
}

func (r Repo) CommitsSince(ctx context.Context, tag string) (int, error) {
	rev := "HEAD"
	if tag != "" {
		rev = tag + "..HEAD"
	}
	out, err := r.run(ctx, "rev-list", "--count", rev)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	return count, nil
}

func (r Repo) run(ctx context.Context, args ...string) (string, error) {
	execFn := r.Exec
	if execFn == nil {
		execFn = runGitOutput
	}
	r.log().Debug().Str("dir", r.Dir).Strs("args", args).Msg("git")
	out, err := execFn(ctx, r.Dir, args)
	if err != nil {
		return "", fmt.Errorf("git %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (r Repo) log() *logger.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logger.Nop()
}

func runGitOutput(ctx context.Context, dir string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
