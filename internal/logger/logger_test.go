package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestApplyLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	ApplyLevel(zerolog.Nop(), "warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	ApplyLevel(zerolog.Nop(), "shouting")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	ApplyLevel(zerolog.Nop(), "")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
