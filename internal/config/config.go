// SPDX-License-Identifier: EPL-2.0

package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/wavepanel/transport"
	"github.com/ik5/wavepanel/waveform"
)

const (
	InputPortAudio  = "portaudio"
	InputMicrophone = "microphone"
)

var ErrBadColor = errors.New("color must be #rrggbb or #rrggbbaa")

// Config holds all runtime configuration, loaded from WAVEPANEL_*
// environment variables.
type Config struct {
	Render waveform.Config

	ProgressInterval time.Duration
	RecordChannels   int
	// Input names the capture backend: portaudio or microphone.
	Input string

	LogLevel slog.Level
}

// Load reads configuration from the environment. Unset or unparsable
// variables keep their defaults.
func Load() Config {
	r := waveform.DefaultConfig()

	r.XScale = envInt("WAVEPANEL_XSCALE", r.XScale)
	r.YScale = envInt("WAVEPANEL_YSCALE", r.YScale)
	r.MaxWidth = envInt("WAVEPANEL_MAX_WIDTH", r.MaxWidth)
	r.TopChannel = envInt("WAVEPANEL_TOP_CHANNEL", r.TopChannel)
	r.BottomChannel = envInt("WAVEPANEL_BOTTOM_CHANNEL", r.BottomChannel)
	r.DrawFill = envBool("WAVEPANEL_FILL", r.DrawFill)
	r.DrawOutline = envBool("WAVEPANEL_OUTLINE", r.DrawOutline)
	r.DrawBaseline = envBool("WAVEPANEL_BASELINE", r.DrawBaseline)
	r.BaselineThickness = envInt("WAVEPANEL_BASELINE_THICKNESS", r.BaselineThickness)
	r.Fill = envColor("WAVEPANEL_FILL_COLOR", r.Fill)
	r.Outline = envColor("WAVEPANEL_OUTLINE_COLOR", r.Outline)
	r.Baseline = envColor("WAVEPANEL_BASELINE_COLOR", r.Baseline)
	r.Background = envColor("WAVEPANEL_BACKGROUND_COLOR", r.Background)

	return Config{
		Render:           r,
		ProgressInterval: time.Duration(envInt("WAVEPANEL_PROGRESS_INTERVAL", int(transport.DefaultProgressInterval/time.Millisecond))) * time.Millisecond,
		RecordChannels:   envInt("WAVEPANEL_RECORD_CHANNELS", 1),
		Input:            envStr("WAVEPANEL_INPUT", InputPortAudio),
		LogLevel:         envLevel("WAVEPANEL_LOG_LEVEL", slog.LevelInfo),
	}
}

// TransportOptions maps the configuration onto transport.Options.
func (c Config) TransportOptions() transport.Options {
	opts := transport.DefaultOptions()
	opts.Channels = c.RecordChannels
	opts.ProgressInterval = c.ProgressInterval
	return opts
}

// ParseColor reads #rrggbb or #rrggbbaa; the leading # is optional and alpha
// defaults to opaque.
func ParseColor(s string) (color.RGBA, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || (len(raw) != 3 && len(raw) != 4) {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrBadColor)
	}

	c := color.RGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}
	if len(raw) == 4 {
		c.A = raw[3]
	}
	return c, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envColor(key string, fallback color.RGBA) color.RGBA {
	if v := os.Getenv(key); v != "" {
		if c, err := ParseColor(v); err == nil {
			return c
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
