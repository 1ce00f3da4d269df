package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovokpus/PostAssist/pkg/models"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Limits.MaxConcurrentGenerations)
	assert.Equal(t, 5, cfg.Limits.MaxConcurrentVerifications)
	assert.Equal(t, 120*time.Second, cfg.Limits.VerificationTimeout)
	assert.Equal(t, 50, cfg.Limits.MetaRecursionLimit)
	assert.Equal(t, 25, cfg.Limits.TeamRecursionLimit)
	assert.Equal(t, 8, cfg.Limits.MaxToolRounds)
	assert.Equal(t, 2*time.Hour, cfg.Store.TTL)
	assert.Equal(t, 60*time.Second, cfg.LLM.CallTimeout)
	assert.Equal(t, 4, cfg.Roles.Len())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MAX_CONCURRENT_GENERATIONS", "2")
	t.Setenv("STORE_TTL_SECONDS", "60")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("STORE_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Limits.MaxConcurrentGenerations)
	assert.Equal(t, time.Minute, cfg.Store.TTL)
	assert.InDelta(t, 0.7, float64(cfg.LLM.Temperature), 1e-6)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.URL)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-integer permits", "MAX_CONCURRENT_GENERATIONS", "many"},
		{"zero permits", "MAX_CONCURRENT_GENERATIONS", "0"},
		{"negative ttl", "STORE_TTL_SECONDS", "-1"},
		{"non-numeric temperature", "LLM_TEMPERATURE", "warm"},
		{"zero tool rounds", "MAX_TOOL_ROUNDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestConfiguredFlags(t *testing.T) {
	assert.False(t, LLMConfig{}.Configured())
	assert.True(t, LLMConfig{APIKey: "sk-test"}.Configured())
	assert.False(t, SearchConfig{}.Configured())
	assert.True(t, SearchConfig{APIKey: "tvly-test"}.Configured())
}

func TestEnums(t *testing.T) {
	assert.True(t, AudienceAcademic.IsValid())
	assert.False(t, Audience("students").IsValid())

	assert.True(t, ToneEnthusiastic.IsValid())
	assert.False(t, Tone("sarcastic").IsValid())

	assert.True(t, VerificationBoth.IsValid())
	assert.False(t, VerificationType("grammar").IsValid())
}

func TestBuiltinRoles(t *testing.T) {
	registry := BuiltinRoles()

	role, err := registry.Get(models.AgentPaperResearcher)
	require.NoError(t, err)
	assert.Equal(t, models.TeamContent, role.Team)
	assert.Contains(t, role.Tools, "research_paper")
	assert.Contains(t, role.SystemPrompt, "Work autonomously")

	sup, err := registry.GetSupervisor(SupervisorMeta)
	require.NoError(t, err)
	assert.Equal(t, []string{models.TeamContent, models.TeamVerification}, sup.Members)

	_, err = registry.Get("Ghost")
	assert.Error(t, err)
}

func TestRoleOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	content := `roles:
  StyleChecker:
    system_prompt: "You review LinkedIn drafts for house style."
    tools: ["check_style"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry := BuiltinRoles()
	require.NoError(t, registry.LoadOverrides(path))

	role, err := registry.Get(models.AgentStyleChecker)
	require.NoError(t, err)
	assert.Contains(t, role.SystemPrompt, "house style")
	assert.Contains(t, role.SystemPrompt, "Work autonomously")

	t.Run("unknown role rejected", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("roles:\n  Ghost:\n    system_prompt: x\n"), 0o644))
		assert.Error(t, BuiltinRoles().LoadOverrides(bad))
	})
}
