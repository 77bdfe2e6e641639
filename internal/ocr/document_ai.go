package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"ocrapi/internal/preprocess"
)

// DefaultDocumentAITimeout bounds a single ProcessDocument call.
const DefaultDocumentAITimeout = 60 * time.Second

// DocumentProcessor is the subset of the Document AI client used for OCR.
// *documentai.DocumentProcessorClient satisfies it.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIConfig locates a Document AI OCR processor.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string // "us" or "eu"; default "us"
	ProcessorID string
	Timeout     time.Duration
}

// ProcessorName returns the fully qualified processor resource name.
func (c DocumentAIConfig) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentAIRecognizer implements Recognizer using a Document AI OCR processor.
type DocumentAIRecognizer struct {
	client DocumentProcessor
	config DocumentAIConfig
}

// NewDocumentAIRecognizer creates a Document AI client with credentials from environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
func NewDocumentAIRecognizer(ctx context.Context, cfg DocumentAIConfig) (*DocumentAIRecognizer, error) {
	const op = "NewDocumentAIRecognizer"

	cfg = cfg.withDefaults()
	if cfg.ProjectID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "GOOGLE_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.ProcessorID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "GOOGLE_PROCESSOR_ID is required")
	}

	var clientOptions []option.ClientOption

	// Regional endpoint for anything other than the default multi-region
	if cfg.Location != "us" {
		clientOptions = append(clientOptions, option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)))
	}

	credentialed := true
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	} else {
		credentialed = false
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if !credentialed {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", cfg.Location))
	}

	return NewDocumentAIRecognizerWithClient(client, cfg), nil
}

// NewDocumentAIRecognizerWithClient creates a recognizer with an explicit client (for testing).
func NewDocumentAIRecognizerWithClient(client DocumentProcessor, cfg DocumentAIConfig) *DocumentAIRecognizer {
	return &DocumentAIRecognizer{client: client, config: cfg.withDefaults()}
}

func (c DocumentAIConfig) withDefaults() DocumentAIConfig {
	if c.Location == "" {
		c.Location = "us"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultDocumentAITimeout
	}
	return c
}

func (d *DocumentAIRecognizer) Name() string { return "documentai" }

// Recognize sends the bitmap as a PNG raw document and returns one detection per page line.
func (d *DocumentAIRecognizer) Recognize(ctx context.Context, img *image.Gray) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	content, err := preprocess.EncodePNG(img)
	if err != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, fmt.Sprintf("failed to encode image: %v", err))
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	resp, err := d.client.ProcessDocument(processCtx, &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: "image/png",
			},
		},
	})
	if err != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
	if resp.GetDocument() == nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, "no document in response")
	}

	return &Result{
		Detections: documentLines(resp.GetDocument()),
		Engine:     d.Name(),
		Duration:   time.Since(startTime),
	}, nil
}

func documentLines(doc *documentaipb.Document) []Detection {
	var detections []Detection
	for _, page := range doc.GetPages() {
		for _, line := range page.GetLines() {
			layout := line.GetLayout()
			text := strings.TrimSpace(anchorText(doc.GetText(), layout.GetTextAnchor()))
			if text == "" {
				continue
			}
			detections = append(detections, Detection{
				Region:     layoutBounds(layout.GetBoundingPoly(), page.GetDimension()),
				Text:       text,
				Confidence: float64(layout.GetConfidence()),
			})
		}
	}
	return detections
}

// anchorText resolves the text segments of an anchor against the document text.
func anchorText(text string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	if anchor.GetContent() != "" {
		return anchor.GetContent()
	}

	var sb strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := int(seg.GetStartIndex()), int(seg.GetEndIndex())
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		sb.WriteString(text[start:end])
	}
	return sb.String()
}

// layoutBounds prefers pixel vertices and falls back to normalized ones scaled by the page size.
func layoutBounds(poly *documentaipb.BoundingPoly, dim *documentaipb.Document_Page_Dimension) image.Rectangle {
	if vertices := poly.GetVertices(); len(vertices) > 0 {
		minX, minY := math.MaxInt, math.MaxInt
		maxX, maxY := math.MinInt, math.MinInt
		for _, v := range vertices {
			x, y := int(v.GetX()), int(v.GetY())
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
		return image.Rect(minX, minY, maxX, maxY)
	}

	normalized := poly.GetNormalizedVertices()
	if len(normalized) == 0 || dim == nil {
		return image.Rectangle{}
	}
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	var maxX, maxY float32
	for _, v := range normalized {
		minX, minY = min(minX, v.GetX()), min(minY, v.GetY())
		maxX, maxY = max(maxX, v.GetX()), max(maxY, v.GetY())
	}
	w, h := dim.GetWidth(), dim.GetHeight()
	return image.Rect(
		int(math.Round(float64(minX*w))), int(math.Round(float64(minY*h))),
		int(math.Round(float64(maxX*w))), int(math.Round(float64(maxY*h))),
	)
}

func (d *DocumentAIRecognizer) Close() error {
	return d.client.Close()
}
