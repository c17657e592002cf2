// Package shape enumerates the supported inclusion cross-sections of the
// patterned layer.
package shape

import "fmt"

type Shape uint8

const (
	Disk Shape = iota
	Ellipse
	Rectangle
)

func UnmarshalText(text string) (Shape, error) {
	switch text {
	case "disk", "circle":
		return Disk, nil
	case "ellipse":
		return Ellipse, nil
	case "rectangle", "square":
		return Rectangle, nil
	default:
		return 0, fmt.Errorf("invalid shape: %q", text)
	}
}

func (s Shape) String() string {
	switch s {
	case Disk:
		return "disk"
	case Ellipse:
		return "ellipse"
	case Rectangle:
		return "rectangle"
	default:
		return fmt.Sprintf("Shape(%d)", uint8(s))
	}
}

// UnmarshalText lets a Shape be decoded directly from TOML and JSON.
func (s *Shape) UnmarshalText(text []byte) error {
	v, err := UnmarshalText(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
