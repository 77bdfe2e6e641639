package upload

import "errors"

var (
	// ErrMissingFile is returned when the request carries no "file" part.
	ErrMissingFile = errors.New("no file part in request")

	// ErrEmptyFilename is returned when the "file" part names no file.
	ErrEmptyFilename = errors.New("no selected file")

	// ErrUnsupportedType is returned when the file extension is not in the allow-set.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrUnsafePath is returned when a resolved temp path escapes the upload directory.
	ErrUnsafePath = errors.New("upload path escapes upload directory")
)
