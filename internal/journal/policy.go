package journal

// Stage identifies a step in the capture pipeline. The pipeline is strictly
// linear: Received → Extracted → Synthesized → Assembled → Stored →
// LinkIssued → Complete.
type Stage string

const (
	StageExtract    Stage = "extract"
	StageSynthesize Stage = "synthesize"
	StageAssemble   Stage = "assemble"
	StageStore      Stage = "store"
	StageLink       Stage = "link"
)

// FailurePolicy states what the orchestrator does when a stage fails.
type FailurePolicy int

const (
	// Abort fails the whole request with a generic message; detail goes to
	// logs only.
	Abort FailurePolicy = iota
	// Degrade continues with a fallback value. Enrichment is nice to have;
	// losing it must not cost the user their document.
	Degrade
)

// stagePolicies is the auditable per-stage failure policy. The asymmetry is
// intentional: synthesis degrades, persistence and link issuance never do,
// because loss of durability cannot be silently masked.
var stagePolicies = map[Stage]FailurePolicy{
	StageExtract:    Abort,
	StageSynthesize: Degrade,
	StageAssemble:   Abort,
	StageStore:      Abort,
	StageLink:       Abort,
}

// PolicyFor returns the failure policy for a stage.
func PolicyFor(s Stage) FailurePolicy {
	return stagePolicies[s]
}
