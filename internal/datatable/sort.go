package datatable

import (
	"cmp"
	"strings"
	"time"
	"unicode"
)

// Direction is the sort direction of a column.
type Direction int

const (
	SortNone Direction = iota
	SortAsc
	SortDesc
)

func (d Direction) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// Indicator is the glyph shown next to a sorted header.
func (d Direction) Indicator() string {
	switch d {
	case SortAsc:
		return "▲"
	case SortDesc:
		return "▼"
	default:
		return ""
	}
}

func (d Direction) next() Direction {
	switch d {
	case SortNone:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortNone
	}
}

// Sort is the single active sort of an engine. A zero value means unsorted.
type Sort struct {
	ColumnID  string
	Direction Direction
}

func (s Sort) active() bool {
	return s.ColumnID != "" && s.Direction != SortNone
}

// compareValues orders two accessor values. Numbers, booleans and times are
// compared by value; everything else uses a case-insensitive natural string
// order so that "Item 2" sorts before "Item 10".
func compareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	switch at := a.(type) {
	case bool:
		if bt, ok := b.(bool); ok {
			return cmp.Compare(boolRank(at), boolRank(bt))
		}
	case time.Time:
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	return naturalCompare(stringify(a), stringify(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func naturalCompare(a, b string) int {
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if c := cmp.Compare(len(na), len(nb)); c != 0 {
				return c
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if c := cmp.Compare(ar[i], br[j]); c != 0 {
			return c
		}
		i++
		j++
	}
	return cmp.Compare(len(ar)-i, len(br)-j)
}
