package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogResolve(t *testing.T) {
	catalog := NewCatalog(testConfig())

	info, ok := catalog.Resolve("")
	require.True(t, ok)
	assert.Equal(t, "deepseek-chat", info.ID)
	assert.True(t, info.Available)

	info, ok = catalog.Resolve("claude-3-5-haiku-latest")
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, info.Provider)
	assert.False(t, info.Available)

	info, ok = catalog.Resolve("gpt-4.1")
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, info.Provider)

	_, ok = catalog.Resolve("llama-3")
	assert.False(t, ok)
}

func TestCatalogListPutsDefaultFirst(t *testing.T) {
	catalog := NewCatalog(testConfig())
	list := catalog.List()

	require.NotEmpty(t, list)
	assert.Equal(t, "deepseek-chat", list[0].ID)
	assert.True(t, list[0].Default)
	assert.Equal(t, []string{"deepseek-chat", "deepseek-reasoner"}, catalog.AvailableIDs())
}
