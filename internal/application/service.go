package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/verctl/internal/domain"
	"github.com/felixgeelhaar/verctl/internal/logger"
)

// Service resolves the next version from git state. All collaborators are
// read-only; a run has no side effects beyond its return value.
type Service struct {
	Git   GitReader
	Env   Environment
	Clock func() time.Time
	Log   *logger.Logger
}

// Resolve computes a VersionInfo for the requested increment. The result
// depends only on repository state, so resolving twice against an
// unchanged repository yields identical values apart from the timestamp.
func (s *Service) Resolve(ctx context.Context, opts Options) (domain.VersionInfo, error) {
	if _, err := domain.ParseIncrement(string(opts.Increment)); err != nil {
		return domain.VersionInfo{}, err
	}

	inside, err := s.Git.InsideWorkTree(ctx)
	if err != nil {
		return domain.VersionInfo{}, fmt.Errorf("%w: cannot inspect work tree: %v", domain.ErrConfiguration, err)
	}
	if !inside {
		return domain.VersionInfo{}, fmt.Errorf("%w: not inside a git work tree", domain.ErrConfiguration)
	}

	hash, err := s.Git.Head(ctx)
	if err != nil {
		return domain.VersionInfo{}, fmt.Errorf("%w: cannot read HEAD: %v", domain.ErrResolution, err)
	}

	lastTag, base, err := s.selectTag(ctx, opts.TagPrefix)
	if err != nil {
		return domain.VersionInfo{}, err
	}

	lastHash := ""
	if lastTag != "" {
		lastHash, err = s.Git.TagCommit(ctx, lastTag)
		if err != nil {
			return domain.VersionInfo{}, fmt.Errorf("%w: cannot resolve tag %s: %v", domain.ErrResolution, lastTag, err)
		}
	}

	commits, err := s.Git.CommitsSince(ctx, lastTag)
	if err != nil {
		return domain.VersionInfo{}, fmt.Errorf("%w: cannot count commits: %v", domain.ErrResolution, err)
	}

	branch, err := s.branch(ctx, hash, opts)
	if err != nil {
		return domain.VersionInfo{}, err
	}

	s.log().Debug().
		Str("last_tag", lastTag).
		Str("branch", branch).
		Int("commits", commits).
		Msg("resolved git state")

	snap := domain.Snapshot{
		Base:      base,
		LastTag:   lastTag,
		LastHash:  lastHash,
		Commits:   commits,
		Hash:      hash,
		Branch:    branch,
		TagPrefix: opts.TagPrefix,
		Now:       s.now(),
	}
	return snap.Finalize(opts.Increment), nil
}

// selectTag picks the matching tag with the highest semantic value among
// tags reachable from HEAD. Returns an empty tag and a 0.0.0 base when
// nothing matches. A matching tag that does not parse as prefix+M.m.p is a
// resolution error, as are two distinct tags sharing the highest version.
func (s *Service) selectTag(ctx context.Context, prefix string) (string, domain.Semver, error) {
	tags, err := s.Git.MergedTags(ctx, prefix+"*")
	if err != nil {
		return "", domain.Semver{}, fmt.Errorf("%w: cannot list tags: %v", domain.ErrResolution, err)
	}

	type candidate struct {
		tag string
		ver domain.Semver
	}
	candidates := make([]candidate, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || !strings.HasPrefix(tag, prefix) {
			continue
		}
		ver, err := domain.ParseSemver(strings.TrimPrefix(tag, prefix))
		if err != nil {
			return "", domain.Semver{}, fmt.Errorf("%w: tag %q does not parse: %v", domain.ErrResolution, tag, err)
		}
		candidates = append(candidates, candidate{tag: tag, ver: ver})
	}
	if len(candidates) == 0 {
		return "", domain.Semver{}, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if semver.Compare("v"+c.ver.String(), "v"+best.ver.String()) > 0 {
			best = c
		}
	}
	for _, c := range candidates {
		if c.tag != best.tag && c.ver == best.ver {
			return "", domain.Semver{}, fmt.Errorf("%w: tags %s and %s share the highest version %s",
				domain.ErrResolution, best.tag, c.tag, best.ver)
		}
	}
	return best.tag, best.ver, nil
}

// branch determines the branch name: CI override first, then git, with
// detached HEAD resolved through the branches containing the commit.
func (s *Service) branch(ctx context.Context, hash string, opts Options) (string, error) {
	name := ""
	if s.Env != nil {
		name = s.Env.BranchOverride()
	}
	if name == "" {
		var err error
		name, err = s.Git.Branch(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: cannot read branch: %v", domain.ErrResolution, err)
		}
	}
	if strings.EqualFold(strings.TrimSpace(name), "HEAD") {
		branches, err := s.Git.BranchesContaining(ctx, hash)
		if err != nil {
			return "", fmt.Errorf("%w: cannot list branches for %s: %v", domain.ErrResolution, hash, err)
		}
		switch len(branches) {
		case 0:
			return "", fmt.Errorf("%w: no branch contains %s", domain.ErrResolution, hash)
		case 1:
			name = branches[0]
		default:
			return "", fmt.Errorf("%w: multiple branches contain %s, cannot determine branch name", domain.ErrResolution, hash)
		}
	}
	if n := opts.StripBranchComponents; n > 0 {
		parts := strings.Split(name, "/")
		if n >= len(parts) {
			return "", fmt.Errorf("%w: branch %q has fewer than %d components to strip", domain.ErrConfiguration, name, n)
		}
		name = strings.Join(parts[n:], "/")
	}
	name = domain.SanitizeBranch(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: empty branch name", domain.ErrResolution)
	}
	return name, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) log() *logger.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Nop()
}
