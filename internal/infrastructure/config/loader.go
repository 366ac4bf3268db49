package config

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/verctl/internal/application"
)

// Loader reads .verctl.yaml into option defaults.
type Loader struct{}

type fileConfig struct {
	TagPrefix             string `yaml:"tag_prefix"`
	EnvPrefix             string `yaml:"env_prefix"`
	Format                string `yaml:"format"`
	StripBranchComponents int    `yaml:"strip_branch_components"`
}

func (l Loader) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l Loader) Load(path string) (application.Defaults, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return application.Defaults{}, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return application.Defaults{}, err
	}

	return application.Defaults{
		TagPrefix:             cfg.TagPrefix,
		EnvPrefix:             cfg.EnvPrefix,
		Format:                cfg.Format,
		StripBranchComponents: cfg.StripBranchComponents,
	}, nil
}

func Write(w io.Writer, defaults application.Defaults) error {
	out := fileConfig{
		TagPrefix:             defaults.TagPrefix,
		EnvPrefix:             defaults.EnvPrefix,
		Format:                defaults.Format,
		StripBranchComponents: defaults.StripBranchComponents,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(out)
}
