package application

import (
	"context"

	"github.com/felixgeelhaar/verctl/internal/domain"
)

// Options selects what one resolution run computes.
type Options struct {
	Increment domain.Increment
	// TagPrefix restricts tag matching and is prepended to the emitted tag.
	TagPrefix string
	// StripBranchComponents drops the first n slash-separated components of
	// the branch name before it is sanitized.
	StripBranchComponents int
}

// Defaults are the file-configurable option defaults; CLI flags override
// them per invocation.
type Defaults struct {
	TagPrefix             string
	EnvPrefix             string
	Format                string
	StripBranchComponents int
}

// GitReader is the read-only view of a repository the resolver needs.
// The tool never mutates git state; creating and pushing the computed tag
// is the calling workflow's job.
type GitReader interface {
	// InsideWorkTree reports whether the working directory is a git work tree.
	InsideWorkTree(ctx context.Context) (bool, error)
	// Head returns the full hash of HEAD.
	Head(ctx context.Context) (string, error)
	// Branch returns the current branch name, "HEAD" when detached.
	Branch(ctx context.Context) (string, error)
	// BranchesContaining lists local branches containing the commit,
	// excluding detached-HEAD pseudo entries.
	BranchesContaining(ctx context.Context, hash string) ([]string, error)
	// MergedTags lists tags reachable from HEAD matching the glob pattern.
	MergedTags(ctx context.Context, pattern string) ([]string, error)
	// TagCommit returns the commit hash a tag points at.
	TagCommit(ctx context.Context, tag string) (string, error)
	// CommitsSince counts commits after tag up to HEAD; with an empty tag
	// it counts every commit reachable from HEAD.
	CommitsSince(ctx context.Context, tag string) (int, error)
}

// Environment exposes CI-provided overrides.
type Environment interface {
	// BranchOverride returns the branch name the CI system advertises,
	// empty when not running under CI.
	BranchOverride() string
}
