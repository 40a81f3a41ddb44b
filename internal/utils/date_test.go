package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1689646427")
	require.NoError(t, err)
	assert.Equal(t, int64(1689646427), ts.Unix())
	assert.Equal(t, time.UTC, ts.Location())

	ts, err = ParseTimestamp("2023-07-18T02:13:47+00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1689646427), ts.Unix())

	ts, err = ParseTimestamp("2023-07-18T02:13:47+0000")
	require.NoError(t, err)
	assert.Equal(t, int64(1689646427), ts.Unix())

	_, err = ParseTimestamp("")
	assert.Error(t, err)
	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestIsWithinDays(t *testing.T) {
	assert.True(t, IsWithinDays(time.Now().Add(-time.Hour), 1))
	assert.False(t, IsWithinDays(time.Now().AddDate(0, 0, -3), 2))
}

func TestSetupLoggerLevel(t *testing.T) {
	logger, closeFn, err := SetupLogger("warn", "", false)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "warning", logger.GetLevel().String())

	logger, closeFn, err = SetupLogger("bogus", "", true)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "debug", logger.GetLevel().String())
}
