package domain

import (
	"path/filepath"
	"time"
)

// Default run parameters applied by Config.Normalize.
const (
	DefaultWorkers       = 5
	DefaultMaxIterations = 4
	DefaultPollInterval  = 500 * time.Millisecond
	DefaultArtifactsDir  = ".mend"
)

// WorkerConfig describes how worker processes are invoked.
type WorkerConfig struct {
	// Command is the argv prefix every job spec starts from.
	Command []string
	// Model selects a worker model/variant, passed as --model when set.
	Model string
	// Context lists directories passed to every worker as --context.
	Context []string
}

// ValidationConfig describes the external validation harness.
type ValidationConfig struct {
	// Command is the argv of the harness invocation.
	Command []string
	// Report is the path the harness leaves its JSON report at.
	Report string
}

// PromptConfig holds the per-phase payload templates. Templates are
// rendered with the task descriptor, its plan and the current guidance.
type PromptConfig struct {
	Propose       string
	ScaffoldSetup string
	ScaffoldCheck string
	Apply         string
	Verify        string
	Analyze       string
}

// Config holds the run parameters loaded from mend.yaml.
type Config struct {
	ManifestPath  string
	ArtifactsDir  string
	WorkDir       string
	Workers       int
	MaxIterations int
	PollInterval  time.Duration
	JobTimeout    time.Duration
	Worker        WorkerConfig
	Validation    ValidationConfig
	Prompts       PromptConfig
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ArtifactsDir == "" {
		c.ArtifactsDir = DefaultArtifactsDir
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.ManifestPath == "" {
		c.ManifestPath = "tasks.yaml"
	}
	if c.Validation.Report == "" {
		c.Validation.Report = filepath.Join(c.ArtifactsDir, "validation.json")
	}
	c.Prompts.normalize()
}

// Validate checks that the config names its external collaborators.
func (c *Config) Validate() error {
	if len(c.Worker.Command) == 0 {
		return ErrMissingWorkerCommand
	}
	if len(c.Validation.Command) == 0 {
		return ErrMissingValidationCommand
	}
	return nil
}

// Default payload templates. They reference only the worker invocation
// contract: the worker decides what the instructions mean.
const (
	defaultProposePrompt = `Examine the task {{.Task.Identity}} at {{.Task.Source}} (category {{.Task.Category}}).
Produce a concrete repair plan for it. Do not modify anything yet.
{{if .Guidance}}Accumulated guidance from prior iterations:
{{.Guidance}}{{end}}`

	defaultScaffoldSetupPrompt = `Set up the shared verification harness for the repair run.
Create any scaffolding required so per-task checks can run.`

	defaultScaffoldCheckPrompt = `Create a check for task {{.Task.Identity}} covering {{.Task.Source}}.
The check must fail while the task is broken and pass once it is repaired.`

	defaultApplyPrompt = `Repair task {{.Task.Identity}} at {{.Task.Source}}.
Follow this plan:
{{.Plan}}
{{if .Guidance}}Also apply the accumulated guidance:
{{.Guidance}}{{end}}`

	defaultVerifyPrompt = `Re-examine your changes for task {{.Task.Identity}} at {{.Task.Source}}.
Run its check, and correct your work if the check fails.`

	defaultAnalyzePrompt = `The validation run reported {{.Validation.Failed}} of {{.Validation.Total}} checks failing:
{{range .Validation.Failures}}- {{.Name}}: {{.Message}}
{{end}}
Analyze the failures and write revised guidance for the next repair iteration.`
)

func (p *PromptConfig) normalize() {
	if p.Propose == "" {
		p.Propose = defaultProposePrompt
	}
	if p.ScaffoldSetup == "" {
		p.ScaffoldSetup = defaultScaffoldSetupPrompt
	}
	if p.ScaffoldCheck == "" {
		p.ScaffoldCheck = defaultScaffoldCheckPrompt
	}
	if p.Apply == "" {
		p.Apply = defaultApplyPrompt
	}
	if p.Verify == "" {
		p.Verify = defaultVerifyPrompt
	}
	if p.Analyze == "" {
		p.Analyze = defaultAnalyzePrompt
	}
}
