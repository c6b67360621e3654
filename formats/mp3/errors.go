// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

// ErrNotMP3File wraps whatever go-mp3 reported while reading the first frame.
var ErrNotMP3File = errors.New("not an MP3 stream")
