package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Increment selects which version component advances.
type Increment string

const (
	IncrementMajor Increment = "major"
	IncrementMinor Increment = "minor"
	IncrementPatch Increment = "patch"
)

// ParseIncrement validates a raw increment argument.
func ParseIncrement(s string) (Increment, error) {
	switch Increment(s) {
	case IncrementMajor, IncrementMinor, IncrementPatch:
		return Increment(s), nil
	}
	return "", fmt.Errorf("%w: increment must be major, minor or patch, got %q", ErrConfiguration, s)
}

// Semver is a plain major.minor.patch triple.
type Semver struct {
	Major int
	Minor int
	Patch int
}

// ParseSemver parses a strict numeric "M.m.p" string. Anything else
// (prerelease suffixes, missing components, non-digits) is rejected.
func ParseSemver(s string) (Semver, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("%w: tag version %q is not in major.minor.patch form", ErrResolution, s)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Semver{}, fmt.Errorf("%w: tag version %q has non-numeric component %q", ErrResolution, s, part)
		}
		nums[i] = n
	}
	return Semver{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Bump returns the next version for the given increment. The targeted
// component advances by one and all lower-order components reset to zero.
func (v Semver) Bump(inc Increment) Semver {
	switch inc {
	case IncrementMajor:
		return Semver{Major: v.Major + 1}
	case IncrementMinor:
		return Semver{Major: v.Major, Minor: v.Minor + 1}
	case IncrementPatch:
		return Semver{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
	return v
}

func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// TimestampLayout is the compact UTC form emitted in the timestamp field.
const TimestampLayout = "20060102T150405Z"

// nugetMaxLen is the NuGet limit on prerelease version length.
// https://github.com/NuGet/Home/issues/1459
const nugetMaxLen = 20

var branchSanitizeRx = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeBranch replaces every character outside [a-zA-Z0-9] with "-" so
// the branch name is safe inside version strings.
func SanitizeBranch(branch string) string {
	return branchSanitizeRx.ReplaceAllString(branch, "-")
}

// VersionInfo is the immutable result of one resolution run. Field order
// matters: it is the order every output format emits.
type VersionInfo struct {
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	Patch      int    `json:"patch"`
	Commits    int    `json:"commits"`
	Hash       string `json:"hash"`
	Branch     string `json:"branch"`
	LastTag    string `json:"last_tag"`
	LastHash   string `json:"last_hash"`
	Tag        string `json:"tag"`
	TagPrefix  string `json:"tag_prefix"`
	Semver     string `json:"semver"`
	SemverFull string `json:"semver_full"`
	PEP440     string `json:"pep440"`
	NuGet      string `json:"nuget"`
	Timestamp  string `json:"timestamp"`
}

// Snapshot carries everything read from the repository before the bump is
// applied. Finalize turns it into a VersionInfo.
type Snapshot struct {
	Base      Semver // version of the last matching tag, zero when none
	LastTag   string // empty when no tag matched the prefix
	LastHash  string
	Commits   int
	Hash      string
	Branch    string // already sanitized
	TagPrefix string
	Now       time.Time
}

// Finalize applies the increment and derives every rendering.
func (s Snapshot) Finalize(inc Increment) VersionInfo {
	next := s.Base.Bump(inc)
	semver := next.String()
	return VersionInfo{
		Major:      next.Major,
		Minor:      next.Minor,
		Patch:      next.Patch,
		Commits:    s.Commits,
		Hash:       s.Hash,
		Branch:     s.Branch,
		LastTag:    s.LastTag,
		LastHash:   s.LastHash,
		Tag:        s.TagPrefix + semver,
		TagPrefix:  s.TagPrefix,
		Semver:     semver,
		SemverFull: semver + branchSuffix(s.Branch, s.Commits, "-"),
		PEP440:     semver + branchSuffix(s.Branch, s.Commits, "+"),
		NuGet:      nugetRender(semver + branchSuffix(s.Branch, s.Commits, "-")),
		Timestamp:  s.Now.UTC().Format(TimestampLayout),
	}
}

// branchSuffix renders the pre-release decoration. Release branches
// (main, master) produce bare versions; every other branch appends the
// branch name and the commit distance.
func branchSuffix(branch string, commits int, separator string) string {
	if branch == "main" || branch == "master" {
		return ""
	}
	return fmt.Sprintf("%s%s.%d", separator, branch, commits)
}

// nugetRender shortens versions past the NuGet prerelease limit by keeping
// the first and last ten characters.
func nugetRender(v string) string {
	if len(v) > nugetMaxLen {
		return v[:10] + v[len(v)-10:]
	}
	return v
}

// Field is one named value in the fixed output order.
type Field struct {
	Name  string
	Value any // int or string
}

// Fields returns every field in the fixed output order shared by all
// formats.
func (v VersionInfo) Fields() []Field {
	return []Field{
		{"major", v.Major},
		{"minor", v.Minor},
		{"patch", v.Patch},
		{"commits", v.Commits},
		{"hash", v.Hash},
		{"branch", v.Branch},
		{"last_tag", v.LastTag},
		{"last_hash", v.LastHash},
		{"tag", v.Tag},
		{"tag_prefix", v.TagPrefix},
		{"semver", v.Semver},
		{"semver_full", v.SemverFull},
		{"pep440", v.PEP440},
		{"nuget", v.NuGet},
		{"timestamp", v.Timestamp},
	}
}

// FieldNames returns the fixed field order.
func FieldNames() []string {
	names := make([]string, 0, 15)
	for _, f := range (VersionInfo{}).Fields() {
		names = append(names, f.Name)
	}
	return names
}

// Select returns the named fields, preserving the fixed order regardless
// of the order names are given in. An empty selection means all fields.
func (v VersionInfo) Select(names []string) ([]Field, error) {
	all := v.Fields()
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		found := false
		for _, f := range all {
			if f.Name == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown field %q", ErrConfiguration, name)
		}
		wanted[name] = true
	}
	selected := make([]Field, 0, len(wanted))
	for _, f := range all {
		if wanted[f.Name] {
			selected = append(selected, f)
		}
	}
	return selected, nil
}
