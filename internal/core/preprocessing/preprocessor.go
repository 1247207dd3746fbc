package preprocessing

// Preprocessor is a single step run against a candidate object before validation.
//
// Process returns true to let the chain continue and false to reject the target.
// A rejection is an expected outcome and must be reported through the boolean,
// never through the error. A non-nil error means the step itself broke.
type Preprocessor interface {
	Process(target any, config Config) (bool, error)
}

// Func adapts an ordinary function to the Preprocessor interface.
type Func func(target any, config Config) (bool, error)

// Process calls f(target, config).
func (f Func) Process(target any, config Config) (bool, error) {
	return f(target, config)
}
