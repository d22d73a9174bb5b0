package domain

import (
	"fmt"
	"strings"
)

// Stage is one step of the manufacturing pipeline. The zero value is not a
// valid stage.
type Stage string

const (
	StageRawMaterialOrdered  Stage = "Raw Material Ordered"
	StageRawMaterialReceived Stage = "Raw Material Received"
	StageFrameFabrication    Stage = "Frame Fabrication"
	StageOutsourceMachining  Stage = "Outsource Machining"
	StageInitialAssembly     Stage = "Initial Assembly"
	StageElectricalWiring    Stage = "Electrical Wiring"
	StageFinalAssembly       Stage = "Final Assembly"
	StageLoadcellCalibration Stage = "Loadcell Calibration"
	StageVerified            Stage = "Verified"
	StageDispatch            Stage = "Dispatch"
)

var pipeline = []Stage{
	StageRawMaterialOrdered,
	StageRawMaterialReceived,
	StageFrameFabrication,
	StageOutsourceMachining,
	StageInitialAssembly,
	StageElectricalWiring,
	StageFinalAssembly,
	StageLoadcellCalibration,
	StageVerified,
	StageDispatch,
}

var completedStages = map[Stage]struct{}{
	StageVerified: {},
	StageDispatch: {},
}

// Stages returns the pipeline in production order.
func Stages() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}

// CompletedStages returns the terminal stages in pipeline order.
func CompletedStages() []Stage {
	var out []Stage
	for _, s := range pipeline {
		if s.IsCompleted() {
			out = append(out, s)
		}
	}
	return out
}

// FirstStage is the stage new orders start in.
func FirstStage() Stage {
	return pipeline[0]
}

// ParseStage accepts the display label in any case and the snake_case form
// ("raw_material_ordered") used by older clients.
func ParseStage(s string) (Stage, error) {
	key := normalizeStage(s)
	for _, st := range pipeline {
		if normalizeStage(string(st)) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

func normalizeStage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Index returns the position in the pipeline, -1 for an unknown stage.
func (s Stage) Index() int {
	for i, st := range pipeline {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

func (s Stage) IsCompleted() bool {
	_, ok := completedStages[s]
	return ok
}

// Next returns the following stage. ok is false for the last stage and for
// unknown stages.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.Index()
	if i < 0 || i == len(pipeline)-1 {
		return "", false
	}
	return pipeline[i+1], true
}

// Slug is the snake_case form, used for CSS classes and metric labels.
func (s Stage) Slug() string {
	return strings.ReplaceAll(normalizeStage(string(s)), " ", "_")
}

func (s Stage) String() string {
	return string(s)
}

type StepState string

const (
	StepDone    StepState = "done"
	StepCurrent StepState = "current"
	StepPending StepState = "pending"
)

type StageStep struct {
	Stage Stage     `json:"stage"`
	Index int       `json:"index"`
	State StepState `json:"state"`
}

// StageProgress marks every stage relative to current. An unknown current
// stage leaves every step pending.
func StageProgress(current Stage) []StageStep {
	ci := current.Index()
	steps := make([]StageStep, len(pipeline))
	for i, st := range pipeline {
		state := StepPending
		switch {
		case ci < 0:
		case i < ci:
			state = StepDone
		case i == ci:
			state = StepCurrent
		}
		steps[i] = StageStep{Stage: st, Index: i, State: state}
	}
	return steps
}
