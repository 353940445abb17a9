// Package capture pipes rendered frames into ffmpeg.
package capture

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const queuedFrames = 3

// Config selects the output file and encoder.
type Config struct {
	OutputFile string
	Width      int
	Height     int
	FPS        int
	// Codec is "h264" or "hevc".
	Codec string
	// HWAccel picks the platform's hardware encoder instead of x264/x265.
	HWAccel    bool
	FFmpegPath string
}

// Frame is one bottom-up RGBA image as returned by a framebuffer read.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Recorder owns the ffmpeg process and the goroutine feeding it. Submit is
// called from the render thread; the goroutine only ever sees byte slices.
type Recorder struct {
	cfg    Config
	frames chan *Frame
	done   chan error
	pts    int64
	closed bool
}

var ErrClosed = errors.New("capture: recorder closed")

// Start launches ffmpeg and returns a recorder ready to accept frames.
func Start(cfg Config) (*Recorder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("capture: invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	r := &Recorder{
		cfg:    cfg,
		frames: make(chan *Frame, queuedFrames),
		done:   make(chan error, 1),
	}
	go r.runEncoder()
	log.Printf("Recording %dx%d@%d to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.OutputFile)
	return r, nil
}

// FrameSize is the byte length Submit expects.
func (r *Recorder) FrameSize() int { return r.cfg.Width * r.cfg.Height * 4 }

// Submit queues a frame, blocking while the encoder is behind.
func (r *Recorder) Submit(pixels []byte) error {
	if r.closed {
		return ErrClosed
	}
	if len(pixels) != r.FrameSize() {
		return fmt.Errorf("capture: frame is %d bytes, want %d", len(pixels), r.FrameSize())
	}
	r.frames <- &Frame{Pixels: pixels, PTS: r.pts}
	r.pts++
	return nil
}

// Close flushes queued frames and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	close(r.frames)
	err := <-r.done
	log.Printf("Recorded %d frames to %s", r.pts, r.cfg.OutputFile)
	return err
}

func (r *Recorder) runEncoder() {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(r.cfg, runtime.GOOS)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(r.cfg.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	if r.cfg.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(r.cfg.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// unblock the writer if ffmpeg dies early
		pipeReader.CloseWithError(err)
		errc <- err
	}()

	var writeErr error
	for frame := range r.frames {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame.Pixels); err != nil {
			log.Printf("Error writing frame %d to ffmpeg: %v", frame.PTS, err)
			writeErr = err
		}
	}
	pipeWriter.Close()

	if err := <-errc; err != nil {
		r.done <- fmt.Errorf("ffmpeg failed: %w", err)
		return
	}
	r.done <- writeErr
}

// Args builds the ffmpeg input and output arguments for goos.
func Args(cfg Config, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"framerate": cfg.FPS,
	}

	hevc := cfg.Codec == "hevc"
	outputArgs = ffmpeg.KwArgs{
		// framebuffer rows arrive bottom-up
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}

	switch {
	case cfg.HWAccel && goos == "linux":
		if hevc {
			outputArgs["c:v"] = "hevc_nvenc"
		} else {
			outputArgs["c:v"] = "h264_nvenc"
		}
		outputArgs["preset"] = "p2"
	case cfg.HWAccel && goos == "darwin":
		if hevc {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
	default:
		if hevc {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
	}

	if hevc && strings.HasSuffix(cfg.OutputFile, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}
