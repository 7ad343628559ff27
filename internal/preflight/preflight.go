package preflight

import (
	"context"
	"path/filepath"

	"stagehand/internal/config"
	"stagehand/internal/deps"
	"stagehand/internal/history"
	"stagehand/internal/opener"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Informational marks a check whose failure is a normal state rather
	// than a configuration problem (e.g. the output root before any run).
	Informational bool
	Detail        string
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckOutputRoot(cfg.Paths.OutputDir))
	results = append(results, CheckLogDir(cfg.Paths.LogDir))
	results = append(results, CheckHistoryDB(cfg))

	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{
			Name:          status.Name,
			Passed:        status.Available,
			Informational: status.Optional,
			Detail:        depDetail(status),
		})
	}

	return results
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// the run command and the status command use this to share one requirements
// list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:    "Pipeline interpreter",
			Command: cfg.Runner.Command,
		},
	}

	openCommand := cfg.Open.Command
	if openCommand == "" {
		openCommand = opener.New().Command()
	}
	// Opening is best-effort: a headless host without a desktop opener can
	// still run the pipeline, it just has nothing to open afterwards.
	requirements = append(requirements, deps.Requirement{
		Name:     "Artifact opener",
		Command:  openCommand,
		Optional: true,
	})

	return deps.CheckBinaries(requirements)
}

// CheckHistoryDB verifies the run history database can be opened.
func CheckHistoryDB(cfg *config.Config) Result {
	const name = "Run history"
	store, err := history.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	path := store.Path()
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: path}
}

func depDetail(status deps.Status) string {
	if status.Available {
		return filepath.Clean(status.Command)
	}
	return status.Detail
}
