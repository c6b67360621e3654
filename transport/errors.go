// SPDX-License-Identifier: EPL-2.0

package transport

import "errors"

var (
	ErrBusy              = errors.New("transport is busy")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrPanicked          = errors.New("transport goroutine panicked")
)
