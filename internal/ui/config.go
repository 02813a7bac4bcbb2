package ui

// Config carries the frontend options from the command line.
type Config struct {
	Title string
	Scale int

	// Muted silences the audio player without stopping the APU.
	Muted bool
}

func (c Config) scale() int {
	if c.Scale <= 0 {
		return 3
	}
	return c.Scale
}
