package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"ocrapi/internal/preprocess"
)

// ImageAnnotator is the subset of the Vision client used for text detection.
// *vision.ImageAnnotatorClient satisfies it.
type ImageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionLanguageHint is the BCP-47 hint sent with every request.
const VisionLanguageHint = "en"

// VisionRecognizer implements Recognizer using Google Cloud Vision API.
type VisionRecognizer struct {
	client ImageAnnotator
}

// NewVisionRecognizer creates a Vision client with credentials from environment.
// It expects either GOOGLE_CREDENTIALS JSON or a GOOGLE_APPLICATION_CREDENTIALS path.
func NewVisionRecognizer(ctx context.Context) (*VisionRecognizer, error) {
	const op = "NewVisionRecognizer"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return NewVisionRecognizerWithClient(client), nil
}

// NewVisionRecognizerWithClient creates a recognizer with an explicit client (for testing).
func NewVisionRecognizerWithClient(client ImageAnnotator) *VisionRecognizer {
	return &VisionRecognizer{client: client}
}

func (v *VisionRecognizer) Name() string { return "vision" }

// Recognize sends the bitmap inline and returns one detection per word annotation.
func (v *VisionRecognizer) Recognize(ctx context.Context, img *image.Gray) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	content, err := preprocess.EncodePNG(img)
	if err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, err.Error())
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: []string{VisionLanguageHint}},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}

	if len(resp.GetResponses()) == 0 {
		return nil, WrapOCRError(op, ErrRecognitionFailed, "no response from Vision API")
	}

	imageResp := resp.GetResponses()[0]
	if imageResp.GetError() != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("Vision API error: %s", imageResp.GetError().GetMessage()))
	}

	return &Result{
		Detections: visionDetections(imageResp.GetTextAnnotations()),
		Engine:     v.Name(),
		Duration:   time.Since(startTime),
	}, nil
}

// visionDetections skips the first annotation, which aggregates the whole image.
func visionDetections(annotations []*visionpb.EntityAnnotation) []Detection {
	if len(annotations) <= 1 {
		return nil
	}

	detections := make([]Detection, 0, len(annotations)-1)
	for _, a := range annotations[1:] {
		text := strings.TrimSpace(a.GetDescription())
		if text == "" {
			continue
		}
		detections = append(detections, Detection{
			Region:     polyBounds(a.GetBoundingPoly()),
			Text:       text,
			Confidence: float64(a.GetConfidence()),
		})
	}
	return detections
}

func polyBounds(poly *visionpb.BoundingPoly) image.Rectangle {
	vertices := poly.GetVertices()
	if len(vertices) == 0 {
		return image.Rectangle{}
	}

	minX, minY := int32(math.MaxInt32), int32(math.MaxInt32)
	maxX, maxY := int32(math.MinInt32), int32(math.MinInt32)
	for _, vx := range vertices {
		minX = min(minX, vx.GetX())
		minY = min(minY, vx.GetY())
		maxX = max(maxX, vx.GetX())
		maxY = max(maxY, vx.GetY())
	}
	return image.Rect(int(minX), int(minY), int(maxX), int(maxY))
}

// Close closes the underlying Vision client.
func (v *VisionRecognizer) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
