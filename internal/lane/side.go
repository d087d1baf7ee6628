package lane

import (
	"fmt"
	"strings"
)

// Side identifies which lane edge a trace follows.
type Side int

const (
	SideLeft Side = iota + 1
	SideRight
)

// Sides lists both edges in drawing order.
var Sides = []Side{SideLeft, SideRight}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide converts a side name into a Side.
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	default:
		return 0, fmt.Errorf("unknown lane side %q", value)
	}
}
