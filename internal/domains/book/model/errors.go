package model

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
)
