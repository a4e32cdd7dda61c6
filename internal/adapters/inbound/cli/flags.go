package cli

import (
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/spf13/cobra"
)

// fileFlags select the files to scan.
type fileFlags struct {
	paths             []string
	exclude           []string
	noDefaultExcludes bool
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.paths, "paths", "p", nil, "Paths to scan (default: current directory)")
	cmd.Flags().StringArrayVarP(&f.exclude, "exclude", "e", nil, "Glob patterns of files or directories to exclude (repeatable)")
	cmd.Flags().BoolVar(&f.noDefaultExcludes, "no-default-excludes", false, "Also scan entries starting with '.' or '_'")
}

func (f *fileFlags) apply(cmd *cobra.Command, opts *application.ScanOptions) {
	if cmd.Flags().Changed("paths") {
		opts.Paths = f.paths
	}
	if cmd.Flags().Changed("exclude") {
		opts.Exclude = append(opts.Exclude, f.exclude...)
	}
	if cmd.Flags().Changed("no-default-excludes") {
		opts.NoDefaultExcludes = f.noDefaultExcludes
	}
}

// registryFlags select the registry to check against.
type registryFlags struct {
	registryName string
	flake        string
	gitRef       string
	noCache      bool
}

func (f *registryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.registryName, "registry-name", domain.DefaultRegistryName, "Registry attribute name in flake outputs")
	cmd.Flags().StringVar(&f.flake, "flake", ".", "Flake reference holding the registry")
	cmd.Flags().StringVar(&f.gitRef, "git-ref", "", "Git ref to evaluate the registry at (e.g. HEAD, HEAD^, main)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Ignore and clear cached registry evaluations")
}

func (f *registryFlags) apply(cmd *cobra.Command, opts *application.ScanOptions) {
	if cmd.Flags().Changed("registry-name") {
		opts.RegistryName = f.registryName
	}
	if cmd.Flags().Changed("flake") {
		opts.Flake = f.flake
	}
	if cmd.Flags().Changed("git-ref") {
		opts.GitRef = f.gitRef
	}
	opts.NoCache = f.noCache
}

// scanFlags are the flags shared by detect and apply.
type scanFlags struct {
	files    fileFlags
	registry registryFlags
	renames  []string
	jobs     int
	progress bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	f.files.register(cmd)
	f.registry.register(cmd)
	cmd.Flags().StringArrayVar(&f.renames, "rename", nil, "Rename mapping in old=new format; longest prefix wins (repeatable)")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Files parsed in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Show a progress bar while scanning")
}

// options merges the project config with the flags that were set.
func (f *scanFlags) options(cmd *cobra.Command, a *app) (application.ScanOptions, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return application.ScanOptions{}, err
	}
	opts := application.ScanOptionsFromConfig(a.project, cfg)

	f.files.apply(cmd, &opts)
	f.registry.apply(cmd, &opts)
	if cmd.Flags().Changed("jobs") {
		opts.Jobs = f.jobs
	}
	if len(f.renames) > 0 {
		rules, err := domain.ParseRenames(f.renames)
		if err != nil {
			return application.ScanOptions{}, err
		}
		opts.Renames = opts.Renames.Merge(rules)
	}
	return opts, nil
}

func (f *scanFlags) detectService(cmd *cobra.Command, a *app) *application.DetectService {
	svc := a.detectService()
	if f.progress {
		svc = svc.WithProgress(newProgressReporter(cmd.ErrOrStderr()))
	}
	return svc
}
