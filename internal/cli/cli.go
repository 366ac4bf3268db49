package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/verctl/internal/application"
	"github.com/felixgeelhaar/verctl/internal/domain"
	"github.com/felixgeelhaar/verctl/internal/infrastructure/config"
	"github.com/felixgeelhaar/verctl/internal/infrastructure/gitrepo"
	"github.com/felixgeelhaar/verctl/internal/infrastructure/render"
	"github.com/felixgeelhaar/verctl/internal/infrastructure/wizard"
	"github.com/felixgeelhaar/verctl/internal/logger"
)

type Service interface {
	Resolve(ctx context.Context, opts application.Options) (domain.VersionInfo, error)
}

// RuntimeOptions select how the service talks to the repository.
type RuntimeOptions struct {
	WorkTree string
	Verbose  bool
}

// BuildFunc constructs the service after flags are known; tests substitute
// a fake.
type BuildFunc func(stderr io.Writer, opts RuntimeOptions) Service

var initWizard = wizard.Run

func Run(args []string, stdout, stderr io.Writer, build BuildFunc) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "major", "minor", "patch":
		return runResolve(args[1], args[2:], stdout, stderr, build)
	case "init":
		return runInit(args[2:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "verctl %s (commit %s, built %s)\n", Version, Commit, Date)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

// BuildService wires the production service.
func BuildService(stderr io.Writer, opts RuntimeOptions) Service {
	log := logger.New(stderr, opts.Verbose)
	ci, err := config.LoadCI()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring CI environment")
	}
	return &application.Service{
		Git: gitrepo.Repo{Dir: opts.WorkTree, Log: log},
		Env: ci,
		Log: log,
	}
}

func runResolve(increment string, args []string, stdout, stderr io.Writer, build BuildFunc) int {
	fs := flag.NewFlagSet(increment, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", ".verctl.yaml", "Config file path")
	tagPrefix := fs.String("tag-prefix", "", "Tag match prefix, also prepended to the emitted tag")
	format := fs.String("format", "", "Output format: json|env|csv|text (default json)")
	jsonPretty := fs.Bool("json-pretty", false, "Indent JSON output")
	envPrefix := fs.String("env-prefix", "", "Prefix for env output keys (default VERSION_)")
	csvHeader := fs.Bool("csv-header", false, "Emit a CSV header row")
	show := fs.String("show", "all", "Comma separated fields to show, or all")
	workTree := fs.String("work-tree", "", "Run git against another work tree")
	strip := fs.Int("strip-branch-components", 0, "Strip the first n branch name components")
	verbose := fs.Bool("verbose", false, "Debug diagnostics on stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	defaults, err := loadDefaults(*configPath, set["config"])
	if err != nil {
		return exitCode(err, stderr)
	}
	if set["tag-prefix"] {
		defaults.TagPrefix = *tagPrefix
	}
	if set["env-prefix"] {
		defaults.EnvPrefix = *envPrefix
	}
	if set["format"] {
		defaults.Format = *format
	}
	if set["strip-branch-components"] {
		defaults.StripBranchComponents = *strip
	}
	if defaults.EnvPrefix == "" {
		defaults.EnvPrefix = "VERSION_"
	}
	if defaults.Format == "" {
		defaults.Format = string(render.FormatJSON)
	}

	fields, err := parseShow(*show)
	if err != nil {
		return exitCode(err, stderr)
	}

	svc := build(stderr, RuntimeOptions{WorkTree: *workTree, Verbose: *verbose})
	info, err := svc.Resolve(context.Background(), application.Options{
		Increment:             domain.Increment(increment),
		TagPrefix:             defaults.TagPrefix,
		StripBranchComponents: defaults.StripBranchComponents,
	})
	if err != nil {
		return exitCode(err, stderr)
	}

	err = render.Writer{}.Write(stdout, info, render.Format(defaults.Format), render.Options{
		Fields:     fields,
		JSONPretty: *jsonPretty,
		EnvPrefix:  defaults.EnvPrefix,
		CSVHeader:  *csvHeader,
	})
	return exitCode(err, stderr)
}

func runInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", ".verctl.yaml", "Config file path")
	force := fs.Bool("force", false, "Overwrite existing config file")
	noInteractive := fs.Bool("no-interactive", false, "Skip the interactive init wizard")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	defaults := application.Defaults{EnvPrefix: "VERSION_", Format: string(render.FormatJSON)}
	loader := config.Loader{}
	if exists, err := loader.Exists(*configPath); err == nil && exists {
		if loaded, err := loader.Load(*configPath); err == nil {
			defaults = loaded
		}
	}

	if !*noInteractive {
		var confirmed bool
		var err error
		defaults, confirmed, err = initWizard(defaults, stdout, os.Stdin)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if !confirmed {
			fmt.Fprintln(stdout, "Init cancelled; no configuration written.")
			return 0
		}
	}
	if err := writeConfigFile(*configPath, defaults, stdout, *force); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	return 0
}

// loadDefaults reads the config file when present. A config path the user
// named explicitly must exist.
func loadDefaults(path string, explicit bool) (application.Defaults, error) {
	loader := config.Loader{}
	exists, err := loader.Exists(path)
	if err != nil {
		return application.Defaults{}, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if !exists {
		if explicit {
			return application.Defaults{}, fmt.Errorf("%w: config %s not found", domain.ErrConfiguration, path)
		}
		return application.Defaults{}, nil
	}
	defaults, err := loader.Load(path)
	if err != nil {
		return application.Defaults{}, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	return defaults, nil
}

func parseShow(show string) ([]string, error) {
	show = strings.TrimSpace(show)
	if show == "" || show == "all" {
		return nil, nil
	}
	fields := make([]string, 0, 4)
	for _, field := range strings.Split(show, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("%w: empty field name in --show", domain.ErrConfiguration)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func writeConfigFile(path string, defaults application.Defaults, stdout io.Writer, force bool) error {
	if path == "-" {
		return config.Write(stdout, defaults)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return config.Write(file, defaults)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `verctl <command>

Commands:
  major    Resolve the next version, bumping the major component
  minor    Resolve the next version, bumping the minor component
  patch    Resolve the next version, bumping the patch component
  init     Write .verctl.yaml defaults (interactive wizard)
  version  Print the verctl binary version`)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return 2
	case errors.Is(err, domain.ErrResolution):
		return 3
	case errors.Is(err, domain.ErrFormat):
		return 4
	}
	return 1
}
