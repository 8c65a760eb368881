package io

import (
	"errors"

	"github.com/ezrec/segvm/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull  = errors.New(f("channel full"))
	ErrChannelEmpty = errors.New(f("channel empty"))
	ErrChannelRune  = errors.New(f("invalid character"))
)
