package vmconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jordyorel/orus-lang-sub003/internal/jit"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppliesCompiledInBaseline(t *testing.T) {
	cfg := Default()
	require.EqualValues(t, 1000, cfg.LoopHitThreshold)
	require.True(t, cfg.JITEnabled)
	require.Equal(t, jit.StageI32Only, cfg.Stage())
}

func TestLoadWithMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.EqualValues(t, 4096, cfg.MaxProfiledLoops)
}

func TestLoadAppliesYAMLLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop_hit_threshold: 50\ninitial_rollout_stage: floats\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 50, cfg.LoopHitThreshold)
	require.Equal(t, jit.StageFloats, cfg.Stage())
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop_hit_threshold: 50\n"), 0o644))

	t.Setenv("VM_LOOP_HIT_THRESHOLD", "7")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 7, cfg.LoopHitThreshold)
}

func TestStageDefaultsToI32OnUnrecognizedValue(t *testing.T) {
	cfg := Config{InitialRolloutStage: "quantum"}
	require.Equal(t, jit.StageI32Only, cfg.Stage())
}
