package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySelect(t *testing.T) {
	registry := NewRegistry(NewCreatePostTool(), NewCheckStyleTool())

	selected, err := registry.Select([]string{"check_style", "create_post"})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "check_style", selected[0].Name)
	assert.Equal(t, "create_post", selected[1].Name)

	_, err = registry.Select([]string{"create_post", "launch_rocket"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launch_rocket")
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry(NewVerifyTechnicalTool(), NewCheckStyleTool(), NewCreatePostTool())

	assert.Equal(t, []string{"check_style", "create_post", "verify_technical"}, registry.Names())
}

func TestToolDefinition(t *testing.T) {
	def := NewCheckStyleTool().Definition()

	assert.Equal(t, "check_style", def.Name)
	assert.NotEmpty(t, def.Description)
	assert.JSONEq(t, string(checkStyleSchema), string(def.Parameters))
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"title":    "Paper",
		"count":    float64(7),
		"insights": []any{"a", "b", 3},
	}

	assert.Equal(t, "Paper", stringArg(args, "title"))
	assert.Equal(t, "", stringArg(args, "missing"))
	assert.Equal(t, 7, intArg(args, "count", 1))
	assert.Equal(t, 1, intArg(args, "missing", 1))
	assert.Equal(t, []string{"a", "b"}, stringSliceArg(args, "insights"))
	assert.Nil(t, stringSliceArg(args, "title"))
}
