package domain

// Step names a phase of a split run, in execution order
type Step int

const (
	StepResolveSource Step = iota
	StepPlan
	StepAllocate
	StepFetchNegatives
	StepWriteManifests
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepResolveSource:
		return "resolving positive source"
	case StepPlan:
		return "planning allocation"
	case StepAllocate:
		return "allocating positives"
	case StepFetchNegatives:
		return "fetching negatives"
	case StepWriteManifests:
		return "writing manifests"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}
