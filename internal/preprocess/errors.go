package preprocess

import "errors"

// ErrImageNotFound is returned when a path cannot be decoded as an image,
// whether the file is missing, corrupt or in an unsupported format.
var ErrImageNotFound = errors.New("image not found or not decodable")
