package planner

import "go.trai.ch/stale/internal/core/domain"

// NeedsCompile decides whether a translation unit has to be compiled again.
// It is required when forced, when the object is missing, or when the source
// or any recorded header is newer than the object.
func NeedsCompile(rec *domain.DependencyRecord, object domain.FileStamp, force bool) domain.CompileDecision {
	d := domain.CompileDecision{Source: rec.Name, Object: object.Path}

	switch {
	case force:
		d.Required, d.Reason = true, domain.ReasonForced
	case !object.Exists:
		d.Required, d.Reason = true, domain.ReasonObjectMissing
	case rec.Source.ModTime.After(object.ModTime):
		d.Required, d.Reason, d.Cause = true, domain.ReasonSourceNewer, rec.Source.Path
	default:
		for _, h := range rec.Headers {
			if h.ModTime.After(object.ModTime) {
				d.Required, d.Reason, d.Cause = true, domain.ReasonHeaderNewer, h.Path
				return d
			}
		}
		d.Reason = domain.ReasonUpToDate
	}
	return d
}

// staleByTime reports whether d was required only because of timestamps,
// which content stamps may overrule.
func staleByTime(d domain.CompileDecision) bool {
	return d.Required && (d.Reason == domain.ReasonSourceNewer || d.Reason == domain.ReasonHeaderNewer)
}
