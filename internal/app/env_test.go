package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/rewind/internal/extract"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	unsetEnv(t, "REWIND_TEST_FOO", "REWIND_TEST_BAR")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "\n# sample\nREWIND_TEST_FOO=alpha\nexport REWIND_TEST_BAR=\"beta gamma\"\nnot a pair\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))
	require.NoError(t, LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "alpha", os.Getenv("REWIND_TEST_FOO"))
	assert.Equal(t, "beta gamma", os.Getenv("REWIND_TEST_BAR"), "quotes are stripped")
}

// Later files override earlier ones, but the real environment wins over both.
func TestLoadEnvFiles_Precedence(t *testing.T) {
	unsetEnv(t, "REWIND_TEST_K")
	t.Setenv("REWIND_TEST_REAL", "from-shell")

	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	require.NoError(t, os.WriteFile(a, []byte("REWIND_TEST_K=first\nREWIND_TEST_REAL=file\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("REWIND_TEST_K=second\n"), 0o600))
	require.NoError(t, LoadEnvFiles(a, b))

	assert.Equal(t, "second", os.Getenv("REWIND_TEST_K"))
	assert.Equal(t, "from-shell", os.Getenv("REWIND_TEST_REAL"))
}

func TestApplyEnvOverrides_SetsOnlyPresentVariables(t *testing.T) {
	t.Setenv("REWIND_CACHE_DIR", "/tmp/rewind-cache")
	t.Setenv("REWIND_FROM", "2001")
	t.Setenv("REWIND_TOPICS", "awards,top-hits")
	t.Setenv("REWIND_HEADINGS", "h2,h4")
	t.Setenv("REWIND_TIMEOUT", "5s")
	t.Setenv("REWIND_RATE", "0.5")
	t.Setenv("REWIND_ROBOTS", "false")

	cfg := Config{
		CacheDir: DefaultCacheDir,
		OutDir:   "keep",
		Years:    extract.YearRange{From: DefaultFromYear, To: DefaultToYear},
		Robots:   true,
	}
	require.NoError(t, ApplyEnvOverrides(&cfg))

	assert.Equal(t, "/tmp/rewind-cache", cfg.CacheDir)
	assert.Equal(t, "keep", cfg.OutDir)
	assert.Equal(t, extract.YearRange{From: 2001, To: DefaultToYear}, cfg.Years)
	assert.Equal(t, []string{"awards", "top-hits"}, cfg.Topics)
	assert.Equal(t, []string{"h2", "h4"}, cfg.HeadingTags)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.Rate)
	assert.False(t, cfg.Robots, "REWIND_ROBOTS=false disables robots")
}

func TestApplyEnvOverrides_RejectsMalformedValues(t *testing.T) {
	t.Setenv("REWIND_CONCURRENCY", "many")
	var cfg Config
	assert.Error(t, ApplyEnvOverrides(&cfg))
}
