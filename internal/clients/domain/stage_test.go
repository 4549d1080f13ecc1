package domain

import (
	"testing"
	"time"

	"broker_portal_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	stage, err := ParseStage("  Qualified ")
	require.NoError(t, err)
	assert.Equal(t, StageQualified, stage)

	stage, err = ParseStage("APPLICATION")
	require.NoError(t, err)
	assert.Equal(t, StageApplication, stage)

	stage, err = ParseStage("qualifed")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, StageUnknown, stage)
}

func TestStageFromStoredIsLenient(t *testing.T) {
	assert.Equal(t, StageClosing, StageFromStored("closing"))
	assert.Equal(t, StageUnknown, StageFromStored(""))
	assert.Equal(t, StageUnknown, StageFromStored("archived"))
	assert.False(t, StageUnknown.IsKnown())
}

func TestStageIsOpen(t *testing.T) {
	assert.False(t, StageClosed.IsOpen())
	assert.False(t, StageLost.IsOpen())
	assert.True(t, StageProcessing.IsOpen())
	assert.True(t, StageUnknown.IsOpen())
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tenDaysAgo := now.Add(-10*24*time.Hour - time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	assert.Equal(t, NeverContactedDays, DaysSince(nil, now))
	assert.Equal(t, 10, DaysSince(&tenDaysAgo, now))
	assert.Equal(t, 0, DaysSince(&tomorrow, now))
	assert.Equal(t, 0, DaysSince(&now, now))
}
