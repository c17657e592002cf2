package mode

import "fmt"

type Mode uint8

const (
	Spectrum Mode = iota
	Angle
	NearField
	Compare
)

func UnmarshalText(text string) (Mode, error) {
	switch text {
	case "spectrum":
		return Spectrum, nil
	case "angle":
		return Angle, nil
	case "nearfield":
		return NearField, nil
	case "compare":
		return Compare, nil
	default:
		return 0, fmt.Errorf("invalid mode: %q", text)
	}
}

func (m Mode) String() string {
	switch m {
	case Spectrum:
		return "spectrum"
	case Angle:
		return "angle"
	case NearField:
		return "nearfield"
	case Compare:
		return "compare"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}
