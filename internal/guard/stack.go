package guard

import (
	"fmt"
	"runtime"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// MaxFrames is the maximum number of frames captured per alert.
const MaxFrames = 16

// FrameCapturer captures the call stack of the current goroutine.
type FrameCapturer interface {
	// CaptureFrames returns at most MaxFrames frames, skipping the given
	// number of frames above the caller of CaptureFrames.
	// An empty result is a degraded diagnostic, not an error.
	CaptureFrames(skip int) []domain.Frame
}

// RuntimeCapturer resolves frames with the Go runtime symbol table.
type RuntimeCapturer struct{}

// CaptureFrames implements FrameCapturer.
func (RuntimeCapturer) CaptureFrames(skip int) []domain.Frame {
	pcs := make([]uintptr, MaxFrames)

	// Skip runtime.Callers and CaptureFrames itself.
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var (
		result = make([]domain.Frame, 0, n)
		frames = runtime.CallersFrames(pcs[:n])
	)

	for len(result) < MaxFrames {
		frame, more := frames.Next()

		result = append(result, domain.Frame{
			Index:  len(result),
			Symbol: symbolize(frame),
		})

		if !more {
			break
		}
	}

	return result
}

// symbolize renders a frame as "function file:line", falling back to the raw
// program counter when the binary carries no symbols for it.
func symbolize(frame runtime.Frame) string {
	if frame.Function == "" {
		return fmt.Sprintf("0x%x", frame.PC)
	}

	if frame.File == "" {
		return frame.Function
	}

	return fmt.Sprintf("%s %s:%d", frame.Function, frame.File, frame.Line)
}

// noopCapturer never captures anything.
type noopCapturer struct{}

func (noopCapturer) CaptureFrames(int) []domain.Frame { return nil }
