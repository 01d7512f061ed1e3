package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevelString(t *testing.T) {
	lv, err := ParseLevelString("debug")
	assert.NoError(t, err)
	assert.Equal(t, DebugLevel, lv)

	lv, err = ParseLevelString("W")
	assert.NoError(t, err)
	assert.Equal(t, WarnLevel, lv)

	lv, err = ParseLevelString("off")
	assert.NoError(t, err)
	assert.Equal(t, OffLevel, lv)

	_, err = ParseLevelString("loud")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "info", InfoLevel.String())
	assert.Equal(t, "trace", TraceLevel.String())
	assert.Equal(t, "off", OffLevel.String())
}
