// Package domain holds the broker pipeline records and the derived values
// computed from them.
package domain

import (
	"fmt"
	"strings"

	"broker_portal_backend/platform/apperr"
)

// Stage is a client's position in the sales funnel.
type Stage string

const (
	StageProspect    Stage = "prospect"
	StageNew         Stage = "new"
	StageContacted   Stage = "contacted"
	StageNurture     Stage = "nurture"
	StageQualified   Stage = "qualified"
	StageApplication Stage = "application"
	StageProcessing  Stage = "processing"
	StageClosing     Stage = "closing"
	StageClosed      Stage = "closed"
	StageLost        Stage = "lost"

	// StageUnknown stands in for persisted values outside the funnel.
	StageUnknown Stage = "unknown"
)

// Stages lists every funnel stage in order.
var Stages = []Stage{
	StageProspect,
	StageNew,
	StageContacted,
	StageNurture,
	StageQualified,
	StageApplication,
	StageProcessing,
	StageClosing,
	StageClosed,
	StageLost,
}

var knownStages = func() map[Stage]struct{} {
	m := make(map[Stage]struct{}, len(Stages))
	for _, s := range Stages {
		m[s] = struct{}{}
	}
	return m
}()

// ParseStage matches s against the funnel stages ignoring case and
// surrounding whitespace.
func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownStages[stage]; ok {
		return stage, nil
	}
	return StageUnknown, apperr.Validation(fmt.Sprintf("unknown pipeline stage %q", s))
}

// StageFromStored is ParseStage for values already persisted: unrecognised
// stages map to StageUnknown without failing the read.
func StageFromStored(s string) Stage {
	stage, _ := ParseStage(s)
	return stage
}

// IsKnown reports whether s is one of the funnel stages.
func (s Stage) IsKnown() bool {
	_, ok := knownStages[s]
	return ok
}

// IsOpen reports whether the client still counts toward pipeline value.
func (s Stage) IsOpen() bool {
	return s != StageClosed && s != StageLost
}

// In reports whether s is one of stages.
func (s Stage) In(stages ...Stage) bool {
	for _, candidate := range stages {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}
