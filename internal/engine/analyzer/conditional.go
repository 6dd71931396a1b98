package analyzer

import "iter"

type regionState uint8

const (
	stateNormal regionState = iota
	stateFalseRegion
)

// conditionalScanner tracks the macros defined so far in one file and whether
// the scan is inside a region excluded by a conditional.
type conditionalScanner struct {
	macros map[string]struct{}
	state  regionState
	// depth counts the open conditionals of the current false region.
	depth int
}

func newConditionalScanner() *conditionalScanner {
	return &conditionalScanner{macros: make(map[string]struct{})}
}

// includes narrows seq down to the quoted includes of active regions.
func (s *conditionalScanner) includes(seq iter.Seq2[Directive, error]) iter.Seq2[Directive, error] {
	return func(yield func(Directive, error) bool) {
		for d, err := range seq {
			if err != nil {
				yield(d, err)
				return
			}
			if s.step(d) && !yield(d, nil) {
				return
			}
		}
	}
}

// step advances the state machine by one directive and reports whether d is
// an include that has to be followed.
func (s *conditionalScanner) step(d Directive) bool {
	if s.state == stateFalseRegion {
		switch d.Kind {
		case DirIfDef, DirIfNotDef, DirIf:
			s.depth++
		case DirEndIf:
			s.depth--
			if s.depth == 0 {
				s.state = stateNormal
			}
		}
		return false
	}

	switch d.Kind {
	case DirDefine:
		s.macros[d.Names[0]] = struct{}{}
	case DirUndef:
		delete(s.macros, d.Names[0])
	case DirIfDef, DirIfNotDef:
		if !s.evaluate(d) {
			s.state = stateFalseRegion
			s.depth = 1
		}
	case DirInclude:
		return !d.System
	}
	return false
}

// evaluate ORs the per-name tests: defined for DirIfDef, not defined for
// DirIfNotDef. So "#if !defined(A) || !defined(B)" holds when either is missing.
func (s *conditionalScanner) evaluate(d Directive) bool {
	want := d.Kind == DirIfDef
	for _, name := range d.Names {
		if _, ok := s.macros[name]; ok == want {
			return true
		}
	}
	return false
}
