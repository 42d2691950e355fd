package text

import (
	"errors"
)

var (
	ErrIndexOutOfBounds = errors.New("[text] index out of bounds")
	ErrInvalidStride    = errors.New("[text] line key stride must be in [2, 1<<32]")
)
