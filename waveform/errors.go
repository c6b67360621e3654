// SPDX-License-Identifier: EPL-2.0

package waveform

import "errors"

var ErrNothingToEncode = errors.New("waveform is empty, nothing to encode")
