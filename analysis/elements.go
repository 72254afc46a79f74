package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Element is a 1-indexed density matrix element.
type Element struct {
	Row int
	Col int
}

// String returns the element in the "21" notation.
func (e Element) String() string {
	return strconv.Itoa(e.Row) + strconv.Itoa(e.Col)
}

func (e Element) Diagonal() bool { return e.Row == e.Col }

// ElementType classifies a selection of elements.
type ElementType int

const (
	NoElements ElementType = iota
	Diagonals
	OffDiagonals
	BothElements
)

func (t ElementType) String() string {
	switch t {
	case Diagonals:
		return "diagonals"
	case OffDiagonals:
		return "off-diagonals"
	case BothElements:
		return "both"
	default:
		return "none"
	}
}

// ParseElements expands a selection of density matrix elements of a system with the given number of sites.
// The selection is "all", "diagonals", "off-diagonals", a comma separated list such as "11,21", or empty.
// Explicit elements use one digit per index, so they address at most 9 sites.
func ParseElements(sites int, s string) ([]Element, error) {
	var elements []Element
	switch s {
	case "":
		return nil, nil
	case "all":
		for i := 1; i <= sites; i++ {
			for j := 1; j <= sites; j++ {
				elements = append(elements, Element{Row: i, Col: j})
			}
		}
	case "diagonals":
		for i := 1; i <= sites; i++ {
			elements = append(elements, Element{Row: i, Col: i})
		}
	case "off-diagonals":
		for i := 1; i <= sites; i++ {
			for j := 1; j <= sites; j++ {
				if i != j {
					elements = append(elements, Element{Row: i, Col: j})
				}
			}
		}
	default:
		for _, f := range strings.Split(s, ",") {
			e, err := parseElement(strings.TrimSpace(f))
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			if e.Row > sites || e.Col > sites {
				return nil, errors.Errorf("element %s is outside %d sites", e, sites)
			}
			elements = append(elements, e)
		}
	}
	return elements, nil
}

func parseElement(s string) (Element, error) {
	if len(s) != 2 {
		return Element{}, errors.Errorf("%q is not of the form \"21\"", s)
	}
	row, col := int(s[0]-'0'), int(s[1]-'0')
	if row < 1 || row > 9 || col < 1 || col > 9 {
		return Element{}, errors.Errorf("%q is not of the form \"21\"", s)
	}
	return Element{Row: row, Col: col}, nil
}

// TypeOf classifies elements as diagonals, off-diagonals or both.
func TypeOf(elements []Element) ElementType {
	var diag, off bool
	for _, e := range elements {
		if e.Diagonal() {
			diag = true
		} else {
			off = true
		}
	}
	switch {
	case diag && off:
		return BothElements
	case diag:
		return Diagonals
	case off:
		return OffDiagonals
	default:
		return NoElements
	}
}

// Coherence selects which component of an off-diagonal element is reported.
type Coherence int

const (
	Imag Coherence = iota + 1
	Real
)

func (c Coherence) String() string {
	switch c {
	case Real:
		return "real"
	case Imag:
		return "imag"
	default:
		return fmt.Sprintf("Coherence(%d)", int(c))
	}
}

// ParseCoherences parses a comma separated list of "real" and "imag".
func ParseCoherences(s string) ([]Coherence, error) {
	var cs []Coherence
	for _, f := range strings.Split(s, ",") {
		switch strings.TrimSpace(f) {
		case "real":
			cs = append(cs, Real)
		case "imag":
			cs = append(cs, Imag)
		default:
			return nil, errors.Errorf("unknown coherence %q", f)
		}
	}
	return cs, nil
}
