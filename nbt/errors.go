package nbt

import "errors"

var (
	// ErrHeterogeneousList is returned when a list or typed array would hold
	// elements of different kinds.
	ErrHeterogeneousList = errors.New("heterogeneous list")

	// ErrUnsupportedFloatForIntegralType is returned for a literal such as
	// 1.5b that pairs a fractional value with an integral suffix.
	ErrUnsupportedFloatForIntegralType = errors.New("unsupported float for integral type")

	// ErrEmptyKey is returned when a compound entry has an empty key.
	ErrEmptyKey = errors.New("empty key in compound tag")

	// ErrDuplicateKey is returned when a compound is built with a key twice.
	ErrDuplicateKey = errors.New("duplicate key in compound tag")
)
