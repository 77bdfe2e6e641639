package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllowSet(t *testing.T) {
	set := ParseAllowSet(" JPG, jpeg ,.png,,")
	assert.Equal(t, []string{"jpeg", "jpg", "png"}, set.List())
}

func TestAllowSetAllowed(t *testing.T) {
	set := ParseAllowSet("jpg,jpeg,png")

	tests := []struct {
		name string
		want bool
	}{
		{"note.JPG", true},
		{"scan.jpeg", true},
		{"archive.tar.png", true},
		{"data.txt", false},
		{"png", false},
		{"photo.", false},
		{".png", true},
		{"photo.png.exe", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, set.Allowed(tt.name), tt.name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"note.JPG":                "note.JPG",
		"../../etc/passwd":        "passwd",
		`C:\Users\me\scan 1.png`:  "scan_1.png",
		"résumé.png":              "resume.png",
		"...hidden.png":           "hidden.png",
		"a b\tc.jpg":              "a_b_c.jpg",
		"weird$name;rm -rf.png":   "weird_name_rm_-rf.png",
		"日本語":                     "",
		"/":                       "",
	}

	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestNewUpload(t *testing.T) {
	set := ParseAllowSet("jpg,png")

	_, err := NewUpload("", 10, set)
	assert.ErrorIs(t, err, ErrEmptyFilename)

	_, err = NewUpload("data.txt", 10, set)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	up, err := NewUpload("../note.JPG", 10, set)
	require.NoError(t, err)
	assert.Equal(t, "jpg", up.Extension)
	assert.Equal(t, "note.JPG", up.SanitizedName)
	assert.Equal(t, int64(10), up.Size)
}

func TestStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	store, err := NewStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoreSaveAndRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(strings.NewReader("image bytes"), "png")
	require.NoError(t, err)
	second, err := store.Save(strings.NewReader("image bytes"), "png")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path, "names must be unique per save")
	assert.Equal(t, store.Dir(), filepath.Dir(first.Path))
	assert.Equal(t, ".png", filepath.Ext(first.Path))
	assert.Equal(t, int64(len("image bytes")), first.Size)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	require.NoError(t, first.Remove())
	require.NoError(t, first.Remove(), "second remove is a no-op")
	_, err = os.Stat(first.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, second.Remove())
}

func TestStoreSaveIgnoresHostileExtension(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	tmp, err := store.Save(strings.NewReader("x"), "../../png")
	require.NoError(t, err)
	defer tmp.Remove()

	assert.Equal(t, store.Dir(), filepath.Dir(tmp.Path))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStoreSaveCleansUpOnWriteFailure(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(failingReader{}, "png")
	require.Error(t, err)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
