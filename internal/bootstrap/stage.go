package bootstrap

import "fmt"

// Stage is a state of the bootstrap pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageCheckingArtifacts
	StageManifestLoaded
	StageRegistryLoaded
	StageTreeBuilt
	StageReady
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:              "Idle",
	StageCheckingArtifacts: "CheckingArtifacts",
	StageManifestLoaded:    "ManifestLoaded",
	StageRegistryLoaded:    "RegistryLoaded",
	StageTreeBuilt:         "TreeBuilt",
	StageReady:             "Ready",
	StageFailed:            "Failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageReady || s == StageFailed
}

// transitions lists the successors of every non-terminal stage. Failed is
// reachable from each of them.
var transitions = map[Stage][]Stage{
	StageIdle:              {StageCheckingArtifacts, StageFailed},
	StageCheckingArtifacts: {StageManifestLoaded, StageFailed},
	StageManifestLoaded:    {StageRegistryLoaded, StageFailed},
	StageRegistryLoaded:    {StageTreeBuilt, StageFailed},
	StageTreeBuilt:         {StageReady, StageFailed},
}

// CanTransition reports whether the pipeline may move from one stage to another.
func CanTransition(from, to Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
