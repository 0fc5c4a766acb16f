package service

import (
	"errors"
	"fmt"
)

var (
	ErrMissingUser            = errors.New("user identity required")
	ErrItemNotFound           = errors.New("item not found")
	ErrDuplicateItem          = errors.New("item with this ID already exists")
	ErrInvalidValue           = errors.New("invalid value")
	ErrNegativeStock          = fmt.Errorf("%w: stock cannot be negative", ErrInvalidValue)
	ErrNegativePrice          = fmt.Errorf("%w: price cannot be negative", ErrInvalidValue)
	ErrConcurrentModification = errors.New("concurrent modification, retry later")
)
