package config

// Mendfile represents the structure of the mend.yaml configuration file.
type Mendfile struct {
	Version       string        `yaml:"version"`
	Manifest      string        `yaml:"manifest"`
	ArtifactsDir  string        `yaml:"artifacts_dir"`
	WorkDir       string        `yaml:"work_dir"`
	Workers       int           `yaml:"workers"`
	MaxIterations int           `yaml:"max_iterations"`
	PollInterval  string        `yaml:"poll_interval"`
	JobTimeout    string        `yaml:"job_timeout"`
	Worker        WorkerDTO     `yaml:"worker"`
	Validation    ValidationDTO `yaml:"validation"`
	Prompts       PromptsDTO    `yaml:"prompts"`
}

// WorkerDTO describes the worker invocation in the configuration.
type WorkerDTO struct {
	Command []string `yaml:"command"`
	Model   string   `yaml:"model"`
	Context []string `yaml:"context"`
}

// ValidationDTO describes the validation harness in the configuration.
type ValidationDTO struct {
	Command []string `yaml:"command"`
	Report  string   `yaml:"report"`
}

// PromptsDTO holds optional per-phase payload template overrides.
type PromptsDTO struct {
	Propose       string `yaml:"propose"`
	ScaffoldSetup string `yaml:"scaffold_setup"`
	ScaffoldCheck string `yaml:"scaffold_check"`
	Apply         string `yaml:"apply"`
	Verify        string `yaml:"verify"`
	Analyze       string `yaml:"analyze"`
}
