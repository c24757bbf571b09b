// Package encoder renders a session offline and exports the frames as a
// preview clip or a poster image.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/richinsley/goshaderdrop/graphics"
)

// ErrStalled is returned when a step produced no frame callback, which
// means the session is not running.
var ErrStalled = errors.New("encoder: session scheduled no frame")

type FrameSink interface {
	WriteFrame(img *image.RGBA) error
}

// Recording ties a mounted session's frame queue and clock to a sink.
type Recording struct {
	Frames *graphics.FrameQueue
	Clock  *graphics.StepClock
	Pixels graphics.PixelReader
	Sink   FrameSink

	Width, Height int
	FPS           int
	Count         int

	// Present runs after each frame is read, e.g. to swap a window's buffers.
	Present func()
}

// Record steps the clock by one frame period per frame, starting at its
// current time, and hands every drawn frame to the sink.
func Record(ctx context.Context, rec Recording) error {
	if rec.FPS <= 0 || rec.Count <= 0 {
		return fmt.Errorf("invalid recording: %d frames at %d fps", rec.Count, rec.FPS)
	}
	step := time.Second / time.Duration(rec.FPS)
	now := rec.Clock.Now()
	for i := 0; i < rec.Count; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if i > 0 {
			now = rec.Clock.Advance(step)
		}
		if rec.Frames.Flush(now) == 0 {
			return fmt.Errorf("frame %d: %w", i, ErrStalled)
		}
		img, err := rec.Pixels.ReadPixels(rec.Width, rec.Height)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := rec.Sink.WriteFrame(img); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if rec.Present != nil {
			rec.Present()
		}
	}
	return nil
}

// Capture keeps the most recent frame.
type Capture struct {
	Last   *image.RGBA
	Frames int
}

func (c *Capture) WriteFrame(img *image.RGBA) error {
	c.Last = img
	c.Frames++
	return nil
}

type teeSink []FrameSink

func (t teeSink) WriteFrame(img *image.RGBA) error {
	for _, s := range t {
		if err := s.WriteFrame(img); err != nil {
			return err
		}
	}
	return nil
}

// Tee writes every frame to each sink in order.
func Tee(sinks ...FrameSink) FrameSink {
	return teeSink(sinks)
}
