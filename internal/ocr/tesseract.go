//go:build !notesseract

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"

	"ocrapi/internal/preprocess"
)

// TesseractLanguage is the trained data every pooled client loads.
const TesseractLanguage = "eng"

// TesseractConfig holds the settings applied to every pooled client.
type TesseractConfig struct {
	// Workers is the number of clients. Default: 1, which serializes all calls.
	Workers int
}

// TesseractRecognizer implements Recognizer with a fixed pool of gosseract clients.
type TesseractRecognizer struct {
	clients chan *gosseract.Client
	mu      sync.RWMutex
	closed  bool
}

// NewTesseractRecognizer creates and configures all pooled clients up front.
func NewTesseractRecognizer(cfg TesseractConfig) (*TesseractRecognizer, error) {
	const op = "NewTesseractRecognizer"

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	r := &TesseractRecognizer{
		clients: make(chan *gosseract.Client, cfg.Workers),
	}

	for i := 0; i < cfg.Workers; i++ {
		client := gosseract.NewClient()
		if err := client.SetLanguage(TesseractLanguage); err != nil {
			client.Close()
			r.drain()
			return nil, WrapOCRError(op, err, fmt.Sprintf("set language %q", TesseractLanguage))
		}
		r.clients <- client
	}

	return r, nil
}

func (r *TesseractRecognizer) Name() string { return "tesseract" }

// Version reports the linked Tesseract library version.
func (r *TesseractRecognizer) Version() string { return gosseract.Version() }

// Recognize borrows a client, waiting for one to free up or for ctx to end.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img *image.Gray) (*Result, error) {
	const op = "Recognize"
	startTime := time.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, NewOCRError(op, ErrEngineClosed, r.Name())
	}

	data, err := preprocess.EncodePNG(img)
	if err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, err.Error())
	}

	var client *gosseract.Client
	select {
	case client = <-r.clients:
	case <-ctx.Done():
		return nil, WrapOCRError(op, ctx.Err(), "waiting for a tesseract client")
	}
	defer func() { r.clients <- client }()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("set image: %v", err))
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, WrapOCRError(op, ErrRecognitionFailed, fmt.Sprintf("recognize lines: %v", err))
	}

	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		detections = append(detections, Detection{
			Region:     box.Box,
			Text:       text,
			Confidence: box.Confidence / 100.0,
		})
	}

	return &Result{
		Detections: detections,
		Engine:     r.Name(),
		Duration:   time.Since(startTime),
	}, nil
}

// Close waits for in-flight calls and closes every pooled client.
func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.drain()
	return nil
}

func (r *TesseractRecognizer) drain() {
	for {
		select {
		case client := <-r.clients:
			client.Close()
		default:
			return
		}
	}
}
