package renderer

import (
	"time"

	"github.com/richinsley/goshaderdrop/graphics"
)

// Config tunes a Session for where its canvas is shown.
type Config struct {
	// MaxDevicePixelRatio caps the backing buffer density. Zero means no cap.
	MaxDevicePixelRatio float64
	// FrameInterval is the minimum time between draws. Zero draws on every
	// scheduled frame.
	FrameInterval time.Duration

	// VisibilityGating pauses the loop while the canvas is off screen.
	VisibilityGating    bool
	VisibilityThreshold float64
	VisibilityMargin    int

	// LazyInit defers compilation until the canvas first becomes visible.
	LazyInit bool
	// DrawOnReady draws one frame as soon as the program is ready, so a
	// paused canvas is not left blank.
	DrawOnReady bool
}

// ObserveOptions is the intersection observer setup for VisibilityGating.
func (c Config) ObserveOptions() graphics.ObserveOptions {
	return graphics.ObserveOptions{Threshold: c.VisibilityThreshold, Margin: c.VisibilityMargin}
}

// PreviewConfig is used for the single large preview and its fullscreen
// overlay.
func PreviewConfig() Config {
	return Config{
		MaxDevicePixelRatio: 2,
		VisibilityGating:    true,
		VisibilityThreshold: 0.1,
		VisibilityMargin:    50,
	}
}

// GalleryConfig is used for the many tiles of the gallery grid.
func GalleryConfig() Config {
	return Config{
		MaxDevicePixelRatio: 1,
		FrameInterval:       time.Second / 30,
		VisibilityGating:    true,
		VisibilityThreshold: 0.1,
		VisibilityMargin:    50,
	}
}

// ThumbnailConfig is used for hover-to-play thumbnails.
func ThumbnailConfig() Config {
	return Config{
		MaxDevicePixelRatio: 0.75,
		FrameInterval:       time.Second / 24,
		VisibilityGating:    true,
		VisibilityThreshold: 0.1,
		VisibilityMargin:    50,
		LazyInit:            true,
		DrawOnReady:         true,
	}
}
