package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesOf(output CapturedOutput) []string {
	var ret []string
	for _, m := range output {
		ret = append(ret, m.Message)
	}
	return ret
}

func TestCapturingLogger(t *testing.T) {
	var logger CapturingLogger
	logger.Printf("message %d", 1)
	logger.Println("message", 2)

	assert.Equal(t, []string{"message 1", "message 2"}, messagesOf(logger.Output()))
}

func TestCapturingLoggerAttachments(t *testing.T) {
	var logger CapturingLogger
	logger.Attach("/tmp/shot.png", "saved %s", "screenshot")

	output := logger.Output()
	require.Len(t, output, 1)
	assert.Equal(t, "saved screenshot", output[0].Message)
	assert.Equal(t, "/tmp/shot.png", output[0].Attachment)
}

func TestCapturingLoggerChildReceivesPreviousAndSubsequentOutput(t *testing.T) {
	var parent, child CapturingLogger
	parent.Printf("before")

	parent.AddChildLogger(&child)
	parent.Printf("during")
	parent.RemoveChildLogger(&child)

	parent.Printf("after")

	assert.Equal(t, []string{"before", "during"}, messagesOf(child.Output()))
	// While a child is attached the parent's own output is suspended; output
	// resumes after the child is removed.
	assert.Equal(t, []string{"before", "after"}, messagesOf(parent.Output()))
}

func TestLoggerWithPrefix(t *testing.T) {
	var base CapturingLogger
	logger := LoggerWithPrefix(&base, "[driver] ")
	logger.Printf("connected to %s", "target")

	assert.Equal(t, []string{"[driver] connected to target"}, messagesOf(base.Output()))
}

func TestLoggerAtLevel(t *testing.T) {
	var base CapturingLogger
	suppressed := LoggerAtLevel(&base, LogLevelInfo, LogLevelDebug)
	passed := LoggerAtLevel(&base, LogLevelInfo, LogLevelError)

	suppressed.Printf("noise")
	passed.Printf("signal")

	assert.Equal(t, []string{"signal"}, messagesOf(base.Output()))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" Debug "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))

	// unrecognized values fall back to info instead of failing
	assert.Equal(t, LogLevelInfo, ParseLogLevel("chatty"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
}
