package psg

// Config holds construction-time PSG tuning constants.
type Config struct {
	// ClockDivider is the number of CPU T-states per internal PSG clock
	// cycle. The real chip runs at CPU clock / 16.
	ClockDivider int
}

func DefaultConfig() Config {
	return Config{ClockDivider: 16}
}
