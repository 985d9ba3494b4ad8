package entity

import "errors"

// Sentinel errors for domain layer operations.
var (
	// ErrEmptyDataset indicates that a dataset source yielded no
	// parseable rows. The process must not serve with no data.
	ErrEmptyDataset = errors.New("dataset contains no records")

	// ErrUnknownColumn indicates that a correlation request named a
	// numeric column the dataset does not expose.
	ErrUnknownColumn = errors.New("unknown numeric column")
)
