// Package preprocess turns an uploaded image into a binarized bitmap that
// gives the recognizer clean, evenly lit character strokes.
//
// The transformation runs on OpenCV through gocv: grayscale decode, a 5x5
// Gaussian blur and Gaussian adaptive thresholding. It is pure: the same file
// and Params always produce byte-identical output.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"gocv.io/x/gocv"
)

// Params control the thresholding stage.
type Params struct {
	// BlockSize is the odd side length of the thresholding neighbourhood.
	BlockSize int
	// Offset is subtracted from the neighbourhood mean to form the threshold.
	Offset int
}

// DefaultParams returns the parameters used by the service.
func DefaultParams() Params {
	return Params{BlockSize: 11, Offset: 2}
}

// blurSize is the Gaussian window; sigma 0 lets OpenCV derive it from the size.
var blurSize = image.Pt(5, 5)

// Preprocessor loads and binarizes images.
type Preprocessor struct {
	params Params
}

// New returns a Preprocessor. Invalid params fall back to DefaultParams.
func New(params Params) *Preprocessor {
	if params.BlockSize < 3 || params.BlockSize%2 == 0 {
		params.BlockSize = DefaultParams().BlockSize
	}
	return &Preprocessor{params: params}
}

// Params returns the effective parameters.
func (p *Preprocessor) Params() Params {
	return p.params
}

// Load decodes the image at path as grayscale and returns its binarized form
// with the same dimensions. Formats the OpenCV build cannot read are decoded
// with imaging instead.
func (p *Preprocessor) Load(path string) (*image.Gray, error) {
	src := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer src.Close()

	if src.Empty() {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrImageNotFound, path, err)
		}
		return p.Process(img)
	}

	return p.binarize(src)
}

// Process binarizes an already decoded image.
func (p *Preprocessor) Process(img image.Image) (*image.Gray, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrImageNotFound)
	}

	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: convert image: %v", ErrImageNotFound, err)
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	return p.binarize(gray)
}

func (p *Preprocessor) binarize(gray gocv.Mat) (*image.Gray, error) {
	blurred := smooth(gray)
	defer blurred.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(blurred, &binary, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		p.params.BlockSize, float32(p.params.Offset))

	return matToGray(binary)
}

// smooth applies the 5x5 Gaussian blur with OpenCV's default reflect-101 border.
// The caller closes the returned Mat.
func smooth(gray gocv.Mat) gocv.Mat {
	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, blurSize, 0, 0, gocv.BorderDefault)
	return blurred
}

// matToGray copies a single-channel 8-bit Mat into an image.Gray.
func matToGray(m gocv.Mat) (*image.Gray, error) {
	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("unexpected mat type %v", m.Type())
	}
	rows, cols := m.Rows(), m.Cols()
	return &image.Gray{
		Pix:    m.ToBytes(),
		Stride: cols,
		Rect:   image.Rect(0, 0, cols, rows),
	}, nil
}

// EncodePNG serializes a bitmap for engines that consume encoded images.
func EncodePNG(img *image.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
