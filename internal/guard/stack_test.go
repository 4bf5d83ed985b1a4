package guard

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// deepCapture recurses depth times before capturing frames.
func deepCapture(depth int) int {
	if depth == 0 {
		return len(RuntimeCapturer{}.CaptureFrames(0))
	}

	return deepCapture(depth - 1)
}

// TestRuntimeCapturer_CapsFrames ensures no more than MaxFrames frames are returned.
func TestRuntimeCapturer_CapsFrames(t *testing.T) {
	t.Parallel()

	require.Equal(t, MaxFrames, deepCapture(40))
}

// TestRuntimeCapturer_FirstFrameIsCaller verifies skip zero starts at the caller of CaptureFrames.
func TestRuntimeCapturer_FirstFrameIsCaller(t *testing.T) {
	t.Parallel()

	frames := RuntimeCapturer{}.CaptureFrames(0)
	require.NotEmpty(t, frames)
	require.True(t, strings.Contains(frames[0].Symbol, "TestRuntimeCapturer_FirstFrameIsCaller"), frames[0].Symbol)
	require.Contains(t, frames[0].Symbol, "stack_test.go:")
}

// TestSymbolize_Fallbacks checks rendering when symbol information is partial or missing.
func TestSymbolize_Fallbacks(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0x1234", symbolize(runtime.Frame{PC: 0x1234}))
	require.Equal(t, "pkg.Func", symbolize(runtime.Frame{PC: 1, Function: "pkg.Func"}))
	require.Equal(t, "pkg.Func /a/b.go:7", symbolize(runtime.Frame{Function: "pkg.Func", File: "/a/b.go", Line: 7}))
}

// TestCaptureStack_Disabled verifies no capture happens when stack traces are off.
func TestCaptureStack_Disabled(t *testing.T) {
	t.Parallel()

	g, _ := newTestGuard(Options{Threshold: 1})
	require.Empty(t, g.captureStack())

	g.Settings().SetStackTraceEnabled(true)
	require.NotEmpty(t, g.captureStack())

	g = New(NewSettings(Options{EnableStackTrace: true}), WithCapturer(nil))
	require.Empty(t, g.captureStack())
}
