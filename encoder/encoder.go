package encoder

import (
	"fmt"
	"image"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ClipOptions describes a preview clip written by ffmpeg.
type ClipOptions struct {
	Path   string
	Width  int
	Height int
	FPS    int
	// Codec is "h264" (default) or "hevc".
	Codec string
}

// ClipArgs returns the ffmpeg input and output arguments for raw RGBA
// frames on stdin, choosing a hardware encoder where goos usually has one.
func ClipArgs(o ClipOptions, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", o.Width, o.Height),
		"r":       o.FPS,
	}

	outputArgs = ffmpeg.KwArgs{"pix_fmt": "yuv420p"}
	hevc := o.Codec == "hevc"
	switch goos {
	case "darwin":
		if hevc {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
		outputArgs["b:v"] = "8M"
	default:
		if hevc {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
		outputArgs["crf"] = 20
	}

	if strings.HasSuffix(o.Path, ".mp4") {
		outputArgs["movflags"] = "+faststart"
		if hevc {
			outputArgs["tag:v"] = "hvc1"
		}
	}
	return
}

// ClipWriter streams frames into an ffmpeg process.
type ClipWriter struct {
	opts   ClipOptions
	pipe   *io.PipeWriter
	errc   chan error
	frames int
	closed bool
}

func NewClipWriter(o ClipOptions) (*ClipWriter, error) {
	if o.Width <= 0 || o.Height <= 0 || o.FPS <= 0 {
		return nil, fmt.Errorf("invalid clip geometry %dx%d@%d", o.Width, o.Height, o.FPS)
	}
	if o.Path == "" {
		return nil, fmt.Errorf("clip output path is required")
	}
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := ClipArgs(o, runtime.GOOS)
	log.Debug("starting ffmpeg", "output", o.Path, "codec", outputArgs["c:v"])

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(o.Path, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// unblock a writer stuck on a dead process
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()
	return &ClipWriter{opts: o, pipe: pipeWriter, errc: errc}, nil
}

func checkFrame(img *image.RGBA, width, height int) error {
	if img.Rect.Dx() != width || img.Rect.Dy() != height {
		return fmt.Errorf("frame is %dx%d, clip is %dx%d", img.Rect.Dx(), img.Rect.Dy(), width, height)
	}
	if img.Stride != width*4 {
		return fmt.Errorf("frame stride %d is not tightly packed", img.Stride)
	}
	return nil
}

func (w *ClipWriter) WriteFrame(img *image.RGBA) error {
	if err := checkFrame(img, w.opts.Width, w.opts.Height); err != nil {
		return err
	}
	if _, err := w.pipe.Write(img.Pix); err != nil {
		return fmt.Errorf("failed to write frame %d to ffmpeg: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Close ends the input stream and waits for ffmpeg to finish the file.
func (w *ClipWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.pipe.Close()
	if err := <-w.errc; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	log.Info("clip written", "path", w.opts.Path, "frames", w.frames)
	return nil
}
