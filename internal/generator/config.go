package generator

// Config drives the demo data generator. IncomingChance is a probability in [0, 1]; 0 means
// every payment is outgoing.
type Config struct {
	IncomingChance float64
	Seed           int64
}

// DefaultConfig returns the settings the demo mode ships with.
func DefaultConfig() Config {
	return Config{
		IncomingChance: 0.3,
	}
}

// WithSeed returns a copy of c using seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	return c
}
