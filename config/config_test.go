package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
TOKEN: test-token
commands:
  allowguils: ["g1"]
  auth:
    Developers: ["dev-1"]
    CouncilRoles: ["council"]
queue:
  suggestions_channel_id: "c-sugg"
  review_channel_id: "c-review"
  public_channel_id: "c-public"
  buffer_guild_id: "g-buffer"
  required_votes: 5
  required_difference: 3
  compare_timeout: 30s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Token)
	assert.Equal(t, []string{"g1"}, cfg.Commands.Allowguils)
	assert.Equal(t, []string{"council"}, cfg.Commands.Auth.CouncilRoles)
	assert.Equal(t, 5, cfg.Queue.RequiredVotes)
	assert.Equal(t, 3, cfg.Queue.RequiredDifference)
	assert.Equal(t, 30*time.Second, cfg.Queue.CompareTimeout)

	// Defaults fill what the file leaves out.
	assert.Equal(t, 1000, cfg.Queue.MaxNoteLength)
	assert.Equal(t, 261888, cfg.Queue.MaxAssetBytes)
	assert.Equal(t, "./data/blobqueue.db", cfg.Database.Path)
	assert.Equal(t, "@every 10m", cfg.Reconcile.Spec)
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "TOKEN: x\nqueue:\n  required_votes: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue.review_channel_id is required")
	assert.Contains(t, err.Error(), "queue.required_votes must be positive")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
