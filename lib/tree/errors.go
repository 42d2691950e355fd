package tree

import "errors"

var (
	ErrEmptyTree      = errors.New("[llrb] empty tree")
	ErrNoSuchKey      = errors.New("[llrb] no such key")
	ErrRankOutOfRange = errors.New("[llrb] rank out of range")
)

// Integrity violations reported by the validators.
var (
	ErrBSTViolation   = errors.New("[llrb] bst order violation")
	ErrSizeViolation  = errors.New("[llrb] size violation")
	ErrRankViolation  = errors.New("[llrb] rank violation")
	ErrRedViolation   = errors.New("[llrb] red violation")
	ErrBlackViolation = errors.New("[llrb] black violation")
)
