// Package polarization enumerates the incident plane-wave polarization
// states. S and P are the linear bases; LCP and RCP are the circular ones
// used for dichroism sweeps.
package polarization

import "fmt"

type Polarization uint8

const (
	S Polarization = iota
	P
	LCP
	RCP
)

func UnmarshalText(text string) (Polarization, error) {
	switch text {
	case "s":
		return S, nil
	case "p":
		return P, nil
	case "lcp":
		return LCP, nil
	case "rcp":
		return RCP, nil
	default:
		return 0, fmt.Errorf("invalid polarization: %q", text)
	}
}

func (p Polarization) String() string {
	switch p {
	case S:
		return "s"
	case P:
		return "p"
	case LCP:
		return "lcp"
	case RCP:
		return "rcp"
	default:
		return fmt.Sprintf("Polarization(%d)", uint8(p))
	}
}

// Circular reports whether p is one of the circular states.
func (p Polarization) Circular() bool {
	return p == LCP || p == RCP
}

func (p *Polarization) UnmarshalText(text []byte) error {
	v, err := UnmarshalText(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Polarization) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
