package scoring

import (
	"fmt"
	"slices"
	"strings"
)

// Scale is the inclusive range of a single aspect rating.
type Scale struct {
	Min int
	Max int
}

// Named grading schemes.
const (
	PresetELE400 = "ELE400"
	PresetELE795 = "ELE795"
)

var (
	allowedMin = []int{0, 1}
	allowedMax = []int{2, 3, 4, 5}

	presets = map[string]Scale{
		PresetELE400: {Min: 1, Max: 5},
		PresetELE795: {Min: 0, Max: 3},
	}
)

// DefaultScale is the 1..5 scheme.
var DefaultScale = Scale{Min: 1, Max: 5}

// NewScale validates min and max.
func NewScale(minScale, maxScale int) (Scale, error) {
	s := Scale{Min: minScale, Max: maxScale}
	return s, s.Validate()
}

// Preset returns the scale of a named grading scheme. Lookup is
// case-insensitive.
func Preset(name string) (Scale, error) {
	s, ok := presets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Scale{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidScale, name)
	}
	return s, nil
}

// Validate rejects values outside min ∈ {0,1} and max ∈ {2,3,4,5}.
func (s Scale) Validate() error {
	if !slices.Contains(allowedMin, s.Min) {
		return fmt.Errorf("%w: min %d not in %v", ErrInvalidScale, s.Min, allowedMin)
	}
	if !slices.Contains(allowedMax, s.Max) {
		return fmt.Errorf("%w: max %d not in %v", ErrInvalidScale, s.Max, allowedMax)
	}
	return nil
}

// Name returns the preset name matching the scale, or "".
func (s Scale) Name() string {
	for name, p := range presets {
		if p == s {
			return name
		}
	}
	return ""
}

// Describe returns a one-line summary of the scale for console output.
func (s Scale) Describe() string {
	if name := s.Name(); name != "" {
		return fmt.Sprintf("scoring per %s scheme (aspect min = %d, aspect max = %d)", name, s.Min, s.Max)
	}
	return fmt.Sprintf("scoring with aspect min = %d and aspect max = %d", s.Min, s.Max)
}

func (s Scale) String() string {
	return fmt.Sprintf("%d..%d", s.Min, s.Max)
}
