package ocr

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	resp     *documentaipb.ProcessResponse
	err      error
	req      *documentaipb.ProcessRequest
	deadline bool
	closed   bool
}

func (f *fakeProcessor) ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, _ ...gax.CallOption) (*documentaipb.ProcessResponse, error) {
	f.req = req
	_, f.deadline = ctx.Deadline()
	return f.resp, f.err
}

func (f *fakeProcessor) Close() error {
	f.closed = true
	return nil
}

func docLine(start, end int64, confidence float32, poly *documentaipb.BoundingPoly) *documentaipb.Document_Page_Line {
	return &documentaipb.Document_Page_Line{Layout: &documentaipb.Document_Page_Layout{
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
		},
		Confidence:   confidence,
		BoundingPoly: poly,
	}}
}

var testProcessor = DocumentAIConfig{ProjectID: "proj", Location: "eu", ProcessorID: "abc123"}

func TestDocumentAIRecognize(t *testing.T) {
	fake := &fakeProcessor{resp: &documentaipb.ProcessResponse{Document: &documentaipb.Document{
		Text: "HELLO\nWORLD\n",
		Pages: []*documentaipb.Document_Page{{
			Dimension: &documentaipb.Document_Page_Dimension{Width: 200, Height: 100},
			Lines: []*documentaipb.Document_Page_Line{
				docLine(0, 6, 0.9, &documentaipb.BoundingPoly{Vertices: []*documentaipb.Vertex{
					{X: 10, Y: 5}, {X: 60, Y: 5}, {X: 60, Y: 20}, {X: 10, Y: 20},
				}}),
				docLine(6, 12, 0.8, &documentaipb.BoundingPoly{NormalizedVertices: []*documentaipb.NormalizedVertex{
					{X: 0.05, Y: 0.3}, {X: 0.5, Y: 0.3}, {X: 0.5, Y: 0.45}, {X: 0.05, Y: 0.45},
				}}),
				docLine(12, 12, 0.1, nil),
			},
		}},
	}}}
	rec := NewDocumentAIRecognizerWithClient(fake, testProcessor)

	res, err := rec.Recognize(context.Background(), blank())
	require.NoError(t, err)

	assert.Equal(t, "documentai", res.Engine)
	assert.Equal(t, []string{"HELLO", "WORLD"}, res.Texts())
	assert.Equal(t, image.Rect(10, 5, 60, 20), res.Detections[0].Region)
	assert.Equal(t, image.Rect(10, 30, 100, 45), res.Detections[1].Region)
	assert.InDelta(t, 0.9, res.Detections[0].Confidence, 1e-6)

	require.NotNil(t, fake.req)
	assert.Equal(t, "projects/proj/locations/eu/processors/abc123", fake.req.GetName())
	raw := fake.req.GetRawDocument()
	require.NotNil(t, raw)
	assert.Equal(t, "image/png", raw.GetMimeType())
	assert.Equal(t, []byte("\x89PNG"), raw.GetContent()[:4])
	assert.True(t, fake.deadline, "call runs under a timeout")

	require.NoError(t, rec.Close())
	assert.True(t, fake.closed)
}

func TestDocumentAIRecognizeFailures(t *testing.T) {
	tests := map[string]*fakeProcessor{
		"transport error": {err: errors.New("unavailable")},
		"no document":     {resp: &documentaipb.ProcessResponse{}},
	}

	for name, fake := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewDocumentAIRecognizerWithClient(fake, testProcessor).Recognize(context.Background(), blank())
			assert.ErrorIs(t, err, ErrRecognitionFailed)
		})
	}
}

func TestDocumentAIConfigDefaults(t *testing.T) {
	cfg := DocumentAIConfig{ProjectID: "p", ProcessorID: "x"}.withDefaults()
	assert.Equal(t, "us", cfg.Location)
	assert.Equal(t, DefaultDocumentAITimeout, cfg.Timeout)

	cfg = DocumentAIConfig{Location: "eu", Timeout: time.Second}.withDefaults()
	assert.Equal(t, "eu", cfg.Location)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestNewDocumentAIRequiresProcessor(t *testing.T) {
	_, err := New(context.Background(), Config{Engine: "documentai", DocumentAI: DocumentAIConfig{ProjectID: "p"}})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = New(context.Background(), Config{Engine: "documentai", DocumentAI: DocumentAIConfig{ProcessorID: "x"}})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestAnchorText(t *testing.T) {
	assert.Equal(t, "", anchorText("abc", nil))
	assert.Equal(t, "inline", anchorText("abc", &documentaipb.Document_TextAnchor{Content: "inline"}))
	assert.Equal(t, "ac", anchorText("abc", &documentaipb.Document_TextAnchor{
		TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
			{StartIndex: 0, EndIndex: 1}, {StartIndex: 2, EndIndex: 3}, {StartIndex: 2, EndIndex: 99},
		},
	}))
}
