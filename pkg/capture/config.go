package capture

// SelectionPolicy controls which enumerated device the camera source opens.
// The two policies exist because deployments disagree on the right default:
// kiosk installs want whatever camera is plugged in, driver-facing installs
// want the front camera and treat its absence as a hard failure.
type SelectionPolicy int

const (
	// SelectFirstAvailable opens the first device that can be opened.
	// An empty enumeration is recoverable; the caller may retry.
	SelectFirstAvailable SelectionPolicy = iota

	// SelectFrontFacing opens the device matching the front-facing hint.
	// An empty enumeration is fatal (ErrNoCamera).
	SelectFrontFacing
)

// String returns the policy name.
func (p SelectionPolicy) String() string {
	switch p {
	case SelectFirstAvailable:
		return "first-available"
	case SelectFrontFacing:
		return "front-facing"
	default:
		return "unknown"
	}
}

// Config holds camera source configuration.
type Config struct {
	// Policy selects which enumerated device to open.
	Policy SelectionPolicy

	// PreferredIndex is the device index the front-facing policy falls
	// back to when no label matches FrontHint.
	PreferredIndex int

	// FrontHint is a case-insensitive device-label fragment identifying
	// the front camera (e.g. "front", "integrated", "facetime").
	FrontHint string

	// MaxProbe bounds device enumeration (indices 0..MaxProbe-1).
	MaxProbe int

	// Frame geometry requested from the device. Zero means device default.
	Width  int
	Height int

	// Quality is the JPEG encode quality (1-100).
	Quality int
}

// DefaultConfig returns the recommended camera configuration.
func DefaultConfig() Config {
	return Config{
		Policy:         SelectFirstAvailable,
		PreferredIndex: 0,
		FrontHint:      "front",
		MaxProbe:       4,
		Width:          640,
		Height:         480,
		Quality:        85,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.MaxProbe < 1 || c.MaxProbe > 64 {
		errors = append(errors, "max probe must be between 1 and 64")
	}
	if c.PreferredIndex < 0 {
		errors = append(errors, "preferred index must not be negative")
	}
	if c.Width < 0 || c.Height < 0 {
		errors = append(errors, "frame geometry must not be negative")
	}
	switch c.Policy {
	case SelectFirstAvailable, SelectFrontFacing:
	default:
		errors = append(errors, "unknown selection policy")
	}

	return errors
}
