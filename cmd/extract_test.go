package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrapi/internal/ocr"
	"ocrapi/internal/pipeline"
	"ocrapi/internal/upload"
)

func writeFile(t *testing.T, name string, data []byte) (string, os.FileInfo) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return path, info
}

func TestValidateImageFile(t *testing.T) {
	allowed := upload.ParseAllowSet("jpg,png")
	log := zerolog.Nop()

	path, _ := writeFile(t, "scan.PNG", []byte("png bytes"))
	_, err := validateImageFile(path, allowed, log)
	assert.NoError(t, err)

	path, _ = writeFile(t, "notes.txt", []byte("text"))
	_, err = validateImageFile(path, allowed, log)
	assert.ErrorContains(t, err, "unsupported file type")

	path, _ = writeFile(t, "empty.jpg", nil)
	_, err = validateImageFile(path, allowed, log)
	assert.ErrorContains(t, err, "empty")

	_, err = validateImageFile(filepath.Join(t.TempDir(), "missing.jpg"), allowed, log)
	assert.ErrorContains(t, err, "not found")

	_, err = validateImageFile(t.TempDir(), allowed, log)
	assert.ErrorContains(t, err, "not a regular file")
}

func TestFormatExtraction(t *testing.T) {
	_, info := writeFile(t, "note.jpg", []byte("jpeg"))
	extraction := &pipeline.Extraction{
		Text:        "HELLO WORLD",
		Engine:      "tesseract",
		Fingerprint: "00ff00ff00ff00ff",
		Duration:    1500 * time.Millisecond,
		Detections: []ocr.Detection{
			{Text: "HELLO WORLD", Region: image.Rect(1, 2, 30, 12), Confidence: 0.91},
		},
	}

	plain, err := formatExtraction(extraction, info, false)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD\n", string(plain))

	data, err := formatExtraction(extraction, info, true)
	require.NoError(t, err)

	var out ExtractOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "HELLO WORLD", out.Text)
	assert.Equal(t, "note.jpg", out.FileName)
	assert.Equal(t, int64(4), out.FileSize)
	assert.Equal(t, "tesseract", out.Engine)
	assert.Equal(t, "1.5s", out.ProcessingDuration)
	require.Len(t, out.Detections, 1)
	assert.Equal(t, image.Rect(1, 2, 30, 12), out.Detections[0].Region)
}

func TestFormatExtractionNoDetections(t *testing.T) {
	_, info := writeFile(t, "blank.png", []byte("png"))

	data, err := formatExtraction(&pipeline.Extraction{Engine: "vision"}, info, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"detections": []`)
}

func TestWriteOutput(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeOutput([]byte("text\n"), "", &stdout, zerolog.Nop()))
	assert.Equal(t, "text\n", stdout.String())

	target := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, writeOutput([]byte("saved"), target, &stdout, zerolog.Nop()))
	saved, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "saved", string(saved))
}
