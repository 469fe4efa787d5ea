package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add campaigns table", "add_campaigns_table"},
		{"Add-Campaigns-Table", "add_campaigns_table"},
		{"ADD_CAMPAIGNS_TABLE", "add_campaigns_table"},
		{"add__campaigns__table", "add_campaigns_table"},
		{"Add Webhook URL 2", "add_webhook_url_2"},
		{"   padded   ", "padded"},
		{"drop!@#$legacy", "droplegacy"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add campaign indexes", "Index campaigns by business and status")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// timestamp version, 14 digits
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_campaign_indexes.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_campaign_indexes.down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add campaign indexes")
	assert.Contains(t, string(up), "Index campaigns by business and status")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "revert: add campaign indexes")
}

func TestCreateMigration_NoDescription(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "seed statuses", "")
	require.NoError(t, err)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "seed statuses")
	assert.NotContains(t, string(up), "-- \n")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		"000002_create_users.up.sql",
		"000002_create_users.down.sql",
		"000001_create_businesses.up.sql",
		"000001_create_businesses.down.sql",
		"000003_create_campaigns.up.sql",
		"000003_create_campaigns.down.sql",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- sql"), 0o644))
	}

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)

	// one entry per pair, sorted by version
	assert.Equal(t, []string{
		"000001_create_businesses",
		"000002_create_users",
		"000003_create_campaigns",
	}, migrations)
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	files := []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"README.md",
		".gitkeep",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init"}, migrations)
}
