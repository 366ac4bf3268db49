package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// CI carries the overrides the hosting CI system provides through the
// environment. Only GitHub Actions is recognized today; on pull request
// builds GITHUB_HEAD_REF names the source branch while git itself sits on
// a detached merge commit.
type CI struct {
	HeadRef string `env:"GITHUB_HEAD_REF"`
}

// LoadCI populates CI from the process environment.
func LoadCI() (CI, error) {
	var ci CI
	if err := env.Parse(&ci); err != nil {
		return CI{}, fmt.Errorf("error reading CI environment: %w", err)
	}
	return ci, nil
}

// BranchOverride implements application.Environment.
func (c CI) BranchOverride() string {
	return strings.TrimSpace(c.HeadRef)
}
