package boundary

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTractURL(t *testing.T) {
	assert.Equal(t,
		"https://www2.census.gov/geo/tiger/TIGER2022/TRACT/tl_2022_06_tract.zip",
		TractURL(2022, "06"))
	assert.Equal(t,
		"ftp://ftp2.census.gov/geo/tiger/TIGER2022/TRACT/tl_2022_06_tract.zip",
		TractFTPURL(2022, "06"))
}

func writeTestZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, body := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtractZIP(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "tracts.zip")
	writeTestZip(t, zipPath, map[string]string{
		"tl_2022_06_tract.shp": "shape data",
		"tl_2022_06_tract.dbf": "attribute data",
		"nested/readme.txt":    "flattened",
	})

	out := filepath.Join(dir, "extracted")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, extractZIP(zipPath, out))

	// Entries extract flat regardless of archive paths.
	data, err := os.ReadFile(filepath.Join(out, "tl_2022_06_tract.shp"))
	require.NoError(t, err)
	assert.Equal(t, "shape data", string(data))

	_, err = os.Stat(filepath.Join(out, "readme.txt"))
	assert.NoError(t, err)
}

func TestExtractZIPMissingArchive(t *testing.T) {
	err := extractZIP(filepath.Join(t.TempDir(), "absent.zip"), t.TempDir())
	assert.Error(t, err)
}

func TestFindFileByExt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracts.SHP"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracts.dbf"), []byte("x"), 0o644))

	path, err := findFileByExt(dir, ".shp")
	require.NoError(t, err, "extension match is case-insensitive")
	assert.Equal(t, filepath.Join(dir, "tracts.SHP"), path)

	_, err = findFileByExt(dir, ".prj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".prj")
}
