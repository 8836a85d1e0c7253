package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractShapefile(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"townssurvey_shp/TOWNSSURVEY_POLYM.shp": "shp",
		"townssurvey_shp/TOWNSSURVEY_POLYM.dbf": "dbf",
		"townssurvey_shp/TOWNSSURVEY_POLYM.shx": "shx",
		"townssurvey_shp/README.txt":            "readme",
	})

	destDir := t.TempDir()
	shpPath, err := ExtractShapefile(zipPath, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "TOWNSSURVEY_POLYM.shp"), shpPath)

	data, err := os.ReadFile(shpPath)
	require.NoError(t, err)
	assert.Equal(t, "shp", string(data))
	assert.FileExists(t, filepath.Join(destDir, "TOWNSSURVEY_POLYM.dbf"))
	assert.NoFileExists(t, filepath.Join(destDir, "README.txt"))
}

func TestExtractShapefile_LowercasesExtensions(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"TOWNS.SHP": "shp",
		"TOWNS.DBF": "dbf",
	})

	destDir := t.TempDir()
	shpPath, err := ExtractShapefile(zipPath, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "TOWNS.shp"), shpPath)
	assert.FileExists(t, filepath.Join(destDir, "TOWNS.dbf"))
}

func TestExtractShapefile_FirstLayerWins(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"b.shp": "b",
		"a.shp": "a",
	})

	destDir := t.TempDir()
	shpPath, err := ExtractShapefile(zipPath, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "a.shp"), shpPath)
}

func TestExtractShapefile_StaysInDestDir(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"../../evil.shp": "x"})

	destDir := t.TempDir()
	shpPath, err := ExtractShapefile(zipPath, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "evil.shp"), shpPath)
}

func TestExtractShapefile_NoLayer(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{"towns.dbf": "dbf"})
	_, err := ExtractShapefile(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .shp file")
}

func TestExtractShapefile_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	_, err := ExtractShapefile(path, t.TempDir())
	require.Error(t, err)
}
