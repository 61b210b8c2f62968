// Package procname recognises procedurally generated system names of the
// form "<Sector> <AB-C> <mass code><N1->N2>", e.g. "Eoch Flyuae QN-T c20-0".
//
// Only the outer shape is checked. Sector names are accepted when they look
// like sector names; the phoneme tables that decide whether a sector really
// exists are not part of this package.
package procname

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Interpreter is the contract the rest of the service relies on.
type Interpreter interface {
	IsProceduralName(name string) bool
	IsValidSectorName(name string) bool
	Canonicalize(name string) string
	PredictSystem(name string) (*Prediction, error)
}

var (
	boxelOnlyRe = regexp.MustCompile(`^[A-Za-z]{2}-[A-Za-z] [A-Za-z](?:(?:\d+-)?\d+)?$`)
	systemRe    = regexp.MustCompile(`^(.+?) ([A-Za-z])([A-Za-z])-([A-Za-z]) ([A-Ha-h])(?:(\d+)-)?(\d+)$`)
)

var ErrNotProcedural = errors.New("not a procedurally generated system name")

// Classification is the result of Classify: Valid, Incomplete or
// NotProcedural.
type Classification interface {
	classification()
}

// Valid is a complete procedural name.
type Valid struct {
	Sector string
	Boxel  Boxel
}

// Incomplete is a bare boxel fragment such as "AB-C d" or "AB-C d1-2"
// with no sector in front of it. No catalog name can equal it.
type Incomplete struct {
	Fragment string
}

type NotProcedural struct{}

func (Valid) classification()         {}
func (Incomplete) classification()    {}
func (NotProcedural) classification() {}

// Boxel identifies one cell of a sector's grid and the system inside it.
type Boxel struct {
	Letters  [3]byte
	MassCode byte
	N1       int
	N2       int
}

func (b Boxel) String() string {
	s := fmt.Sprintf("%c%c-%c %c", b.Letters[0], b.Letters[1], b.Letters[2], b.MassCode)
	if b.N1 > 0 {
		s += strconv.Itoa(b.N1) + "-"
	}
	return s + strconv.Itoa(b.N2)
}

// Grammar is the default Interpreter.
type Grammar struct{}

func New() *Grammar {
	return &Grammar{}
}

// Classify decides which shape name has. Whitespace runs are collapsed
// before matching.
func (g *Grammar) Classify(name string) Classification {
	name = normalize(name)

	if boxelOnlyRe.MatchString(name) {
		return Incomplete{Fragment: name}
	}

	m := systemRe.FindStringSubmatch(name)
	if m == nil || !g.IsValidSectorName(m[1]) {
		return NotProcedural{}
	}

	n1 := 0
	if m[6] != "" {
		var err error
		if n1, err = strconv.Atoi(m[6]); err != nil {
			return NotProcedural{}
		}
	}
	n2, err := strconv.Atoi(m[7])
	if err != nil {
		return NotProcedural{}
	}

	return Valid{
		Sector: titleWords(m[1]),
		Boxel: Boxel{
			Letters:  [3]byte{upper(m[2][0]), upper(m[3][0]), upper(m[4][0])},
			MassCode: lower(m[5][0]),
			N1:       n1,
			N2:       n2,
		},
	}
}

func (g *Grammar) IsProceduralName(name string) bool {
	_, ok := g.Classify(name).(Valid)
	return ok
}

// IsValidSectorName accepts one or two alphabetic words (generated sectors
// like "Synuefe" or "Eoch Flyuae") or a short phrase ending in "Sector"
// (named sectors like "Col 285 Sector").
func (g *Grammar) IsValidSectorName(name string) bool {
	words := strings.Fields(name)
	if len(words) == 0 || len(strings.Join(words, "")) < 3 {
		return false
	}

	if strings.EqualFold(words[len(words)-1], "sector") {
		if len(words) < 2 || len(words) > 5 {
			return false
		}
		for _, w := range words {
			if !isAlnum(w) {
				return false
			}
		}
		return true
	}

	if len(words) > 2 {
		return false
	}
	for _, w := range words {
		if len(w) < 2 || !isAlpha(w) {
			return false
		}
	}
	return true
}

// Canonicalize returns the conventional capitalisation of a procedural
// name or sector name. Anything else comes back trimmed but unchanged.
func (g *Grammar) Canonicalize(name string) string {
	switch c := g.Classify(name).(type) {
	case Valid:
		return c.Sector + " " + c.Boxel.String()
	}
	if g.IsValidSectorName(name) {
		return titleWords(name)
	}
	return strings.TrimSpace(name)
}

func normalize(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

var _ Interpreter = (*Grammar)(nil)
