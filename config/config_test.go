package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "grimoire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	s, violations := Sanitize(Defaults())
	assert.Empty(t, violations)
	assert.Equal(t, Defaults(), s)
	assert.NoError(t, s.MorphThresholds().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	s, violations, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Equal(t, 10*time.Second, s.FearBanTime)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
selected_pet: felhunter
fear_ban_time: 4s
funnel_pet_hp: 40
use_hellfire: true
`)
	t.Setenv("GRIMOIRE_FUNNEL_PET_HP", "30")
	t.Setenv("GRIMOIRE_USE_DARK_SOUL", "false")

	s, violations, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.Equal(t, PetFelhunter, s.SelectedPet)
	assert.Equal(t, 4*time.Second, s.FearBanTime)
	assert.Equal(t, 30, s.FunnelPetHP, "env wins over file")
	assert.False(t, s.UseDarkSoul)
	assert.True(t, s.UseHellfire)
}

func TestLoadResetsOutOfRangeFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
selected_pet: dragon
funnel_player_hp: 180
rule_failure_limit: 0
havoc_health_percentage: 25
`)
	s, violations, err := Load(path)
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, d.SelectedPet, s.SelectedPet)
	assert.Equal(t, d.FunnelPlayerHP, s.FunnelPlayerHP)
	assert.Equal(t, d.RuleFailureLimit, s.RuleFailureLimit)
	assert.Equal(t, 25, s.HavocHealthPercentage, "valid fields survive")

	fields := map[string]bool{}
	for _, v := range violations {
		fields[v.Field] = true
	}
	assert.Equal(t, map[string]bool{"selected_pet": true, "funnel_player_hp": true, "rule_failure_limit": true}, fields)
}

func TestSanitizeEnforcesMorphHysteresis(t *testing.T) {
	s := Defaults()
	s.MorphEntryFury = 600
	s.MorphExitFury = 700

	got, violations := Sanitize(s)
	require.Len(t, violations, 1)
	assert.Equal(t, 850, got.MorphEntryFury)
	assert.Equal(t, 750, got.MorphExitFury)
	assert.Contains(t, violations[0].String(), "600/700")
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "selected_pet: [unterminated")
	_, _, err = Load(path)
	assert.Error(t, err)
}

func TestStoreVersions(t *testing.T) {
	st := NewStore(Defaults())
	_, v1 := st.Load()

	s := Defaults()
	s.UsePet = false
	v2 := st.Replace(s)

	got, v := st.Load()
	assert.Greater(t, v2, v1)
	assert.Equal(t, v2, v)
	assert.False(t, got.UsePet)
}

func TestWatchReloadsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "use_pet: true\n")
	st := NewStore(Defaults())
	_, start := st.Load()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, st) }()

	// The watcher needs a moment to register before the write.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("use_pet: false\n"), 0o644)
		s, v := st.Load()
		return v > start && !s.UsePet
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
