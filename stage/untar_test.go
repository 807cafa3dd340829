package stage

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, path string, gzipped bool, names map[string]string) {
	fd, err := os.Create(path)
	require.NoError(t, err)
	defer fd.Close()

	var tw *tar.Writer
	if gzipped {
		gz := pgzip.NewWriter(fd)
		defer gz.Close()
		tw = tar.NewWriter(gz)
	} else {
		tw = tar.NewWriter(fd)
	}
	defer tw.Close()

	for name, contents := range names {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(contents)),
		}))
		_, err := tw.Write([]byte(contents))
		require.NoError(t, err)
	}
}

func TestUntar(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "lane.tar")
	writeArchive(t, archive, false, map[string]string{
		"RunInfo.xml":                      "<RunInfo/>",
		"Data/Intensities/BaseCalls/a.bcl": "bcl",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, Untar(archive, dest))

	contents, err := os.ReadFile(filepath.Join(dest, "RunInfo.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<RunInfo/>", string(contents))

	_, err = os.Stat(filepath.Join(dest, "Data", "Intensities", "BaseCalls", "a.bcl"))
	assert.NoError(t, err)
}

func TestUntarGzipped(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "meta.tar.gz")
	writeArchive(t, archive, true, map[string]string{
		"runParameters.xml": "<RunParameters/>",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, Untar(archive, dest))

	_, err := os.Stat(filepath.Join(dest, "runParameters.xml"))
	assert.NoError(t, err)
}

func TestUntarRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar")
	writeArchive(t, archive, false, map[string]string{
		"../escape.txt": "nope",
	})

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	assert.Error(t, Untar(archive, dest))
}

func TestUntarMissingArchive(t *testing.T) {
	assert.Error(t, Untar("/nonexistent/archive.tar", t.TempDir()))
}
