package problemgen

// Config controls the behavior of the RandomGenerator.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// generated question. They execute in order; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxRegenerations bounds how many times a question failing validation
	// is regenerated. The last candidate is returned regardless, so
	// generation never fails.
	MaxRegenerations int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&ShapeValidator{},
			&MathCheckValidator{},
		},
		MaxRegenerations: 3,
	}
}
