package domain

// Reasons reported by the build decision engine.
const (
	ReasonForced         = "forced"
	ReasonObjectMissing  = "object does not exist"
	ReasonSourceNewer    = "source is newer"
	ReasonHeaderNewer    = "header is newer"
	ReasonNoRecord       = "no dependency record"
	ReasonUnchanged      = "touched but unchanged"
	ReasonRecompiled     = "sources recompiled"
	ReasonLibraryRebuilt = "dependent library rebuilt"
	ReasonTargetMissing  = "target does not exist"
	ReasonTargetOlder    = "target is older than an input"
	ReasonUpToDate       = "up to date"
)

// CompileDecision is the verdict for one translation unit.
type CompileDecision struct {
	Source   string
	Object   string
	Required bool
	Reason   string
	// Cause is the file that triggered the decision, if any.
	Cause string
}

// ProjectPlan is the verdict for one project.
type ProjectPlan struct {
	Project   string
	Kind      ProjectKind
	Output    string
	Compiles  []CompileDecision
	Objects   []string
	Libraries []string
	Relink    bool
	Reason    string
	Cause     string
	// Degraded is set when the dependency record could not be used.
	Degraded bool
}

// CompileCount returns the number of translation units that need compiling.
func (p *ProjectPlan) CompileCount() int {
	n := 0
	for _, c := range p.Compiles {
		if c.Required {
			n++
		}
	}
	return n
}

// Explanation renders the reason of the decision together with its cause.
func (d CompileDecision) Explanation() string {
	return explain(d.Reason, d.Cause)
}

// Explanation renders the reason of the relink decision together with its cause.
func (p *ProjectPlan) Explanation() string {
	return explain(p.Reason, p.Cause)
}

func explain(reason, cause string) string {
	if cause == "" {
		return reason
	}
	return reason + ": " + cause
}
