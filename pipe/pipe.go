// Package pipe runs short sequences of failable operations, stopping on the
// first error. Useful for chains of git plumbing calls.
package pipe

// OpFuncs wraps plain functions into one sequential operation
type OpFuncs []func() error

// Do runs each function in order, returning the first error encountered
func (ops OpFuncs) Do() error {
	for _, op := range ops {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}
