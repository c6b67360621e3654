// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrEmptyStream           = errors.New("empty WAV stream")
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrUnsupportedWavChunks  = errors.New("unsupported WAV chunks")
	ErrCorruptStream         = errors.New("corrupt WAV stream")
)
