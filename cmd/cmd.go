// cmd contains shared helpers for the command line binaries.
package cmd

// GetOrPanic returns v, or panics if err is not nil.
func GetOrPanic[T any](v T, err error) T {
	OrPanic(err)
	return v
}

// OrPanic panics if err is not nil.
func OrPanic(err error) {
	if err != nil {
		panic(err)
	}
}
