package workflow

import (
	"fmt"
	"slices"
	"strings"
)

// Stage names one pipeline step.
type Stage string

const (
	StagePlates      Stage = "plates"
	StageSupplements Stage = "supplements"
	StagePackage     Stage = "package"
	StagePublish     Stage = "publish"
)

var stageOrder = []Stage{StagePlates, StageSupplements, StagePackage, StagePublish}

// AllStages returns every stage in execution order.
func AllStages() []Stage {
	return slices.Clone(stageOrder)
}

// ParseStage maps a stage name to its Stage.
func ParseStage(name string) (Stage, error) {
	candidate := Stage(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(stageOrder, candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown stage %q", name)
}

// StageSet is the set of stages selected for a run.
type StageSet map[Stage]bool

// NewStageSet builds a set from stages. An empty argument selects nothing.
func NewStageSet(stages ...Stage) StageSet {
	set := make(StageSet, len(stages))
	for _, stage := range stages {
		set[stage] = true
	}
	return set
}

// Ordered returns the selected stages in execution order.
func (s StageSet) Ordered() []Stage {
	var ordered []Stage
	for _, stage := range stageOrder {
		if s[stage] {
			ordered = append(ordered, stage)
		}
	}
	return ordered
}

// String joins the selected stages with commas.
func (s StageSet) String() string {
	ordered := s.Ordered()
	names := make([]string, len(ordered))
	for i, stage := range ordered {
		names[i] = string(stage)
	}
	return strings.Join(names, ",")
}
