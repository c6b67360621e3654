// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes 16-bit PCM AIFF files through github.com/go-audio/aiff.
//
// go-audio needs to seek, so input that is not an io.ReadSeeker is read into
// memory first.
package aiff
