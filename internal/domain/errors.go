package domain

import "errors"

// Error kinds. Every failure the tool reports wraps exactly one of these,
// and the CLI maps them to distinct exit codes.
var (
	// ErrConfiguration covers invalid arguments and environments the tool
	// cannot run in (unknown increment, not a git work tree, bad field name).
	ErrConfiguration = errors.New("configuration error")
	// ErrResolution covers git metadata that cannot be read or does not
	// parse (corrupt tag, ambiguous branch, duplicate highest tag).
	ErrResolution = errors.New("resolution error")
	// ErrFormat covers unknown output format selectors.
	ErrFormat = errors.New("format error")
)
