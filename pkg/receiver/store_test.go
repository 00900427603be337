package receiver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.png", "a.png"},
		{"../../etc/passwd", "passwd"},
		{`..\..\share.png`, "share.png"},
		{"/abs/path/x.png", "x.png"},
		{"dir/", "dir"},
		{"", unnamedFile},
		{".", unnamedFile},
		{"..", unnamedFile},
		{"/", unnamedFile},
		{"  ", unnamedFile},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"a.png", 0, "a.png"},
		{"a.png", 1, "a_1.png"},
		{"a.tar.gz", 2, "a.tar_2.gz"},
		{"noext", 1, "noext_1"},
		{".bashrc", 3, ".bashrc_3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, candidateName(tt.name, tt.n))
	}
}

func writeTemp(t *testing.T, s store, content string) string {
	t.Helper()
	f, err := s.createTemp()
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestStoreCommitResolvesCollisions(t *testing.T) {
	dir := t.TempDir()
	s := store{dir: dir}

	first, err := s.commit(writeTemp(t, s, "one"), "a.png")
	require.NoError(t, err)
	second, err := s.commit(writeTemp(t, s, "two"), "a.png")
	require.NoError(t, err)
	third, err := s.commit(writeTemp(t, s, "three"), "a.png")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a.png"), first)
	assert.Equal(t, filepath.Join(dir, "a_1.png"), second)
	assert.Equal(t, filepath.Join(dir, "a_2.png"), third)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	files, err := s.shareFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3, "no temp files left behind")
}

func TestStoreShareFiles(t *testing.T) {
	dir := t.TempDir()
	s := store{dir: dir}
	for _, name := range []string{"b.png", "a.png", "reconstruction.png", ".hidden", "status.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	_ = writeTemp(t, s, "partial")

	files, err := s.shareFiles("reconstruction.png", "status.json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
	}, files)
}

func TestStoreShareFilesMissingDir(t *testing.T) {
	s := store{dir: filepath.Join(t.TempDir(), "missing")}
	_, err := s.shareFiles()
	require.ErrorIs(t, err, ErrIOFailure)
}
