// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize  = errors.New("dst size must be multiple of channels")
	ErrNoChannels      = errors.New("buffer has no channels")
	ErrRaggedChannels  = errors.New("channels differ in length")
	ErrChannelMismatch = errors.New("channel count mismatch")
	ErrInvalidRange    = errors.New("invalid frame range")
)
