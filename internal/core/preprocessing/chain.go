package preprocessing

// Chain holds an ordered list of preprocessors and runs them in sequence.
// The zero value is an empty chain ready to use.
//
// A chain is not safe for Add calls concurrent with Process. Populate it fully,
// then share it; Process only reads the member list.
type Chain struct {
	preprocessors []Preprocessor
}

// NewChain creates a chain holding ps in the given order
func NewChain(ps ...Preprocessor) *Chain {
	c := &Chain{
		preprocessors: make([]Preprocessor, 0, len(ps)),
	}
	for _, p := range ps {
		c.Add(p)
	}
	return c
}

// Add appends a preprocessor to the end of the chain. Duplicates are allowed.
func (c *Chain) Add(p Preprocessor) {
	c.preprocessors = append(c.preprocessors, p)
}

// Len returns the number of preprocessors in the chain
func (c *Chain) Len() int {
	return len(c.preprocessors)
}

// Preprocessors returns a copy of the members in append order
func (c *Chain) Preprocessors() []Preprocessor {
	cp := make([]Preprocessor, len(c.preprocessors))
	copy(cp, c.preprocessors)
	return cp
}

// Process runs every preprocessor in append order against target.
//
// It stops at the first preprocessor returning false and reports false. An error
// returned by a preprocessor is handed back as is, without wrapping, and no later
// preprocessor runs. Panics are not recovered. An empty chain returns true.
func (c *Chain) Process(target any, config Config) (bool, error) {
	res := c.Run(target, config)
	switch res.Outcome {
	case Faulted:
		return false, res.Cause
	case Rejected:
		return false, nil
	default:
		return true, nil
	}
}

// Run is Process with a three-way result that also names the step that ended the run.
func (c *Chain) Run(target any, config Config) Result {
	for i, p := range c.preprocessors {
		ok, err := p.Process(target, config)
		if err != nil {
			return Result{Outcome: Faulted, Step: i, Cause: err}
		}
		if !ok {
			return Result{Outcome: Rejected, Step: i}
		}
	}
	return Result{Outcome: Succeeded, Step: -1}
}
