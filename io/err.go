package io

import (
	"errors"

	"github.com/ezrec/um32/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelClosed = errors.New(f("channel closed"))
	ErrImageLength   = errors.New(f("image length not a multiple of 4"))
)
