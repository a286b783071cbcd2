package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mend/internal/adapters/report"
	"go.trai.ch/mend/internal/adapters/state"
	"go.trai.ch/mend/internal/adapters/telemetry"
	"go.trai.ch/mend/internal/app"
	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/mend/internal/core/ports/mocks"
	"go.trai.ch/mend/internal/engine/loop"
	"go.trai.ch/mend/internal/engine/pool"
	"go.uber.org/mock/gomock"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

// instantLauncher hands out processes that already exited successfully.
type instantLauncher struct{}

func (instantLauncher) Launch(_ context.Context, spec domain.JobSpec) (ports.Process, error) {
	return instantProc{out: "done " + spec.Label}, nil
}

type instantProc struct{ out string }

func (p instantProc) Poll() (bool, int, error) { return true, 0, nil }
func (p instantProc) Kill() error              { return nil }
func (p instantProc) Output() string           { return p.out }

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	cfg := &domain.Config{
		ArtifactsDir:  filepath.Join(t.TempDir(), "artifacts"),
		WorkDir:       ".",
		Workers:       2,
		MaxIterations: 2,
		PollInterval:  time.Millisecond,
		Worker:        domain.WorkerConfig{Command: []string{"worker"}},
		Validation:    domain.ValidationConfig{Command: []string{"harness"}},
	}
	cfg.Normalize()
	return cfg
}

func newApp(t *testing.T, configs ports.ConfigLoader, manifests ports.ManifestLoader, validator ports.Validator) *app.App {
	t.Helper()
	log := nopLogger{}
	tracer := telemetry.NewNoOpTracer()
	engine := loop.NewEngine(
		pool.New(instantLauncher{}, log, tracer),
		validator,
		state.NewStore(),
		report.NewWriter(),
		log,
		tracer,
	)
	return app.New(configs, manifests, engine, log)
}

func TestRun_Converges(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig(t)

	configs := mocks.NewMockConfigLoader(ctrl)
	configs.EXPECT().Load(".").Return(cfg, nil)

	manifests := mocks.NewMockManifestLoader(ctrl)
	manifests.EXPECT().Load(cfg.ManifestPath).Return([]domain.TaskDescriptor{{Identity: "a"}}, nil)

	validator := mocks.NewMockValidator(ctrl)
	validator.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ValidationResult{Total: 1, Passed: 1}, nil)

	err := newApp(t, configs, manifests, validator).Run(context.Background(), app.RunOptions{})
	require.NoError(t, err)
	assert.FileExists(t, domain.NewLayout(cfg.ArtifactsDir).ReportPath())
}

func TestRun_CeilingSurfacesAsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig(t)
	cfg.MaxIterations = 5

	configs := mocks.NewMockConfigLoader(ctrl)
	configs.EXPECT().Load(".").Return(cfg, nil)

	manifests := mocks.NewMockManifestLoader(ctrl)
	manifests.EXPECT().Load(gomock.Any()).Return([]domain.TaskDescriptor{{Identity: "a"}}, nil)

	// The --max-iterations override caps the run at a single iteration.
	validator := mocks.NewMockValidator(ctrl)
	validator.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ValidationResult{Total: 1, Failed: 1,
			Failures: []domain.FailedItem{{Name: "a", Message: "broken"}}}, nil).
		Times(1)

	err := newApp(t, configs, manifests, validator).Run(context.Background(), app.RunOptions{MaxIterations: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCeilingReached)
}

func TestRun_ConfigLoadErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)

	configs := mocks.NewMockConfigLoader(ctrl)
	configs.EXPECT().Load(".").Return(nil, domain.ErrConfigReadFailed)

	manifests := mocks.NewMockManifestLoader(ctrl)
	validator := mocks.NewMockValidator(ctrl)

	err := newApp(t, configs, manifests, validator).Run(context.Background(), app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestRun_ManifestErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig(t)

	configs := mocks.NewMockConfigLoader(ctrl)
	configs.EXPECT().Load(".").Return(cfg, nil)

	manifests := mocks.NewMockManifestLoader(ctrl)
	manifests.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrEmptyManifest)

	validator := mocks.NewMockValidator(ctrl)

	err := newApp(t, configs, manifests, validator).Run(context.Background(), app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyManifest)
}

func TestClean_RemovesArtifacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ArtifactsDir, "logs"), 0o750))

	configs := mocks.NewMockConfigLoader(ctrl)
	configs.EXPECT().Load(".").Return(cfg, nil)

	manifests := mocks.NewMockManifestLoader(ctrl)
	validator := mocks.NewMockValidator(ctrl)

	require.NoError(t, newApp(t, configs, manifests, validator).Clean())
	assert.NoDirExists(t, cfg.ArtifactsDir)
}
