package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixedLoggerAddsPrefix(t *testing.T) {
	target := &CapturingLogger{}
	logger := PrefixedLogger(target, "[category] ")

	logger.Printf("created with %s %s", "_id", "abc")
	logger.Printf("name %s", "100%d")

	output := target.Output()
	require.Len(t, output, 2)
	assert.Equal(t, "[category] created with _id abc", output[0].Message)
	assert.Equal(t, "[category] name 100%d", output[1].Message)
}

func TestPrefixedLoggerWithNoTargetDiscards(t *testing.T) {
	logger := PrefixedLogger(nil, "[category] ")

	assert.NotPanics(t, func() { logger.Printf("anything") })
}
