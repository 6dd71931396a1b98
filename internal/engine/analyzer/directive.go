package analyzer

import (
	"bytes"
	"iter"
	"strings"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/zerr"
)

// DirectiveKind identifies the preprocessor directives the scanner understands.
type DirectiveKind uint8

const (
	// DirDefine is #define NAME.
	DirDefine DirectiveKind = iota + 1
	// DirUndef is #undef NAME.
	DirUndef
	// DirInclude is #include "path" or #include <path>.
	DirInclude
	// DirIfDef is #ifdef NAME or #if defined(A) || defined(B).
	DirIfDef
	// DirIfNotDef is #ifndef NAME or #if !defined(A) || !defined(B).
	DirIfNotDef
	// DirIf is any other conditional. Its condition is not evaluated.
	DirIf
	// DirEndIf is #endif.
	DirEndIf
)

// Directive is one directive found in a source file.
type Directive struct {
	Kind DirectiveKind
	// Names holds the macro name of define and undef, and the identifiers of a conditional.
	Names []string
	// Path is the include target.
	Path string
	// System is set for angle bracket includes.
	System bool
	// Line is the 1-based line the directive starts on.
	Line int
}

// Directives returns a lazy sequence of the directives in src. Lines that are not
// directives, and directives the scanner does not understand, are skipped.
// The sequence can be ranged over any number of times.
func Directives(src []byte) iter.Seq2[Directive, error] {
	return func(yield func(Directive, error) bool) {
		r := lineReader{src: src}
		for {
			raw, ok := r.next()
			if !ok {
				return
			}
			text := strings.TrimSpace(raw)
			if !strings.HasPrefix(text, "#") {
				continue
			}

			start := r.line
			for strings.HasSuffix(text, `\`) {
				cont, ok := r.next()
				if !ok {
					err := zerr.With(zerr.Wrap(domain.ErrUnexpectedEndOfInput, "missing continuation line"), "line", r.line)
					yield(Directive{Line: start}, err)
					return
				}
				text = strings.TrimSuffix(text, `\`) + " " + strings.TrimSpace(cont)
			}

			d, ok := parseDirective(text[1:])
			if !ok {
				continue
			}
			d.Line = start
			if !yield(d, nil) {
				return
			}
		}
	}
}

type lineReader struct {
	src  []byte
	pos  int
	line int
}

func (r *lineReader) next() (string, bool) {
	if r.pos >= len(r.src) {
		return "", false
	}
	rest := r.src[r.pos:]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		end = len(rest)
		r.pos = len(r.src)
	} else {
		r.pos += end + 1
	}
	r.line++
	return strings.TrimSuffix(string(rest[:end]), "\r"), true
}

func parseDirective(body string) (Directive, bool) {
	body = strings.TrimSpace(body)
	keyword := identifierPrefix(body)
	rest := strings.TrimSpace(body[len(keyword):])

	switch keyword {
	case "include":
		return parseInclude(rest)
	case "define", "undef":
		name := identifierPrefix(stripComment(rest))
		if name == "" {
			return Directive{}, false
		}
		kind := DirDefine
		if keyword == "undef" {
			kind = DirUndef
		}
		return Directive{Kind: kind, Names: []string{name}}, true
	case "ifdef", "ifndef":
		name := identifierPrefix(stripComment(rest))
		if name == "" {
			return Directive{Kind: DirIf}, true
		}
		kind := DirIfDef
		if keyword == "ifndef" {
			kind = DirIfNotDef
		}
		return Directive{Kind: kind, Names: []string{name}}, true
	case "if":
		return parseCondition(stripComment(rest)), true
	case "endif":
		return Directive{Kind: DirEndIf}, true
	default:
		return Directive{}, false
	}
}

func parseInclude(rest string) (Directive, bool) {
	if rest == "" {
		return Directive{}, false
	}
	var closer byte
	switch rest[0] {
	case '"':
		closer = '"'
	case '<':
		closer = '>'
	default:
		// Computed includes cannot be resolved without macro expansion.
		return Directive{}, false
	}
	path := rest[1:]
	if end := strings.IndexByte(path, closer); end >= 0 {
		path = path[:end]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Directive{}, false
	}
	return Directive{Kind: DirInclude, Path: path, System: closer == '>'}, true
}

// parseCondition recognizes a disjunction of defined() tests sharing one polarity.
// Anything else is returned as an opaque DirIf.
func parseCondition(cond string) Directive {
	cond = strings.NewReplacer("(", " ", ")", " ", "!", " ! ", "||", " || ").Replace(cond)
	tokens := strings.Fields(cond)

	opaque := Directive{Kind: DirIf}
	var (
		names   []string
		negated bool
	)
	for i := 0; i < len(tokens); {
		if len(names) > 0 {
			if tokens[i] != "||" {
				return opaque
			}
			i++
		}

		neg := false
		if i < len(tokens) && tokens[i] == "!" {
			neg = true
			i++
		}
		if i+1 >= len(tokens) || tokens[i] != "defined" || !isIdentifier(tokens[i+1]) {
			return opaque
		}
		if len(names) == 0 {
			negated = neg
		} else if neg != negated {
			return opaque
		}
		names = append(names, tokens[i+1])
		i += 2
	}
	if len(names) == 0 {
		return opaque
	}

	kind := DirIfDef
	if negated {
		kind = DirIfNotDef
	}
	return Directive{Kind: kind, Names: names}
}

func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "/*"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func identifierPrefix(s string) string {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i) {
			return s[:i]
		}
	}
	return s
}

func isIdentifier(s string) bool {
	return s != "" && identifierPrefix(s) == s
}

func isIdentByte(c byte, pos int) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return pos > 0
	default:
		return false
	}
}
