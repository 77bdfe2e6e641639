package preprocess

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// Fingerprint returns a perceptual difference hash of img as 16 hex digits.
// Near-identical uploads share a fingerprint, which lets logs correlate repeats.
func Fingerprint(img image.Image) (string, error) {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return "", fmt.Errorf("difference hash: %w", err)
	}
	return fmt.Sprintf("%016x", hash.GetHash()), nil
}
