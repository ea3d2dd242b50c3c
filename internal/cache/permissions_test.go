package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StrictPerms(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "html")
	s := &Store{Dir: dir, StrictPerms: true}
	require.NoError(t, s.Save("1994_in_film.html", []byte("<html></html>")))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode()&0o777)

	finfo, err := os.Stat(filepath.Join(dir, "1994_in_film.html"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), finfo.Mode()&0o777)
}

func TestStore_DefaultPerms(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := &Store{Dir: dir}
	require.NoError(t, s.Save("x.html", []byte("x")))

	finfo, err := os.Stat(filepath.Join(dir, "x.html"))
	require.NoError(t, err)
	// umask may only remove bits
	assert.Zero(t, finfo.Mode()&0o777&^0o644, "file mode %o exceeds 0644", finfo.Mode()&0o777)
}
