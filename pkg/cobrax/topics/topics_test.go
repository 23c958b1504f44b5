// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None (in-memory fs)
// PURPOSE: Topic loading, lookup, and help-command integration

package topics_test

import (
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapcli/slap/pkg/cobrax/topics"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"workflows.md": {Data: []byte("# Workflows\n\npending vs active")},
		"dry-run.txt":  {Data: []byte("Nothing is written under --dry-run.")},
		"notes.json":   {Data: []byte(`{"ignored": true}`)},
	}
}

func TestLoad_FiltersByExtension(t *testing.T) {
	m, err := topics.Load(testFS(), topics.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"dry-run", "workflows"}, m.List())

	_, ok := m.Get("notes")
	assert.False(t, ok, "unsupported extensions are not topics")
}

func TestGet_ToleratesFlagSpelling(t *testing.T) {
	m, err := topics.Load(testFS(), topics.Options{})
	require.NoError(t, err)

	topic, ok := m.Get("--dry-run")
	require.True(t, ok)
	assert.Equal(t, "dry-run", topic.Name)
	assert.Equal(t, ".txt", topic.Format)
}

func TestRender_PlainByDefault(t *testing.T) {
	m, err := topics.Load(testFS(), topics.Options{})
	require.NoError(t, err)

	topic, ok := m.Get("workflows")
	require.True(t, ok)
	assert.Equal(t, "# Workflows\n\npending vs active", m.Render(topic))
}

func TestInitialize_ReplacesHelpCommand(t *testing.T) {
	rootCmd := &cobra.Command{Use: "slap"}
	rootCmd.AddCommand(&cobra.Command{Use: "sync", Run: func(*cobra.Command, []string) {}})

	err := topics.Initialize(rootCmd, testFS(), topics.Options{})
	require.NoError(t, err)

	helpCmd, _, err := rootCmd.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help", helpCmd.Name())
	assert.NotNil(t, helpCmd.Run)

	// Completion offers commands and topics.
	completions, _ := helpCmd.ValidArgsFunction(helpCmd, nil, "")
	assert.Contains(t, completions, "topics")
	assert.Contains(t, completions, "sync")
	assert.Contains(t, completions, "workflows")
}
