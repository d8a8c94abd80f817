package domain

import "errors"

var (
	ErrUnsupportedImage = errors.New("unsupported image extension")
	ErrInvalidFileName  = errors.New("invalid file name")
	ErrFileTooLarge     = errors.New("file is too large")
)
