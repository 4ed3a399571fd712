package errortypes

// Severity tells whether an error stops the work it came from.
type Severity int

const (
	SeverityUnknown Severity = iota
	// SeverityFatal errors reject a configuration or settle a request as failed.
	SeverityFatal
	// SeverityWarning errors are reported and then ignored.
	SeverityWarning
)

// isFatal treats errors without a severity as fatal.
func isFatal(err error) bool {
	s, ok := err.(Coder)
	return !ok || s.Severity() == SeverityFatal
}

func isWarning(err error) bool {
	s, ok := err.(Coder)
	return ok && s.Severity() == SeverityWarning
}

// FatalOnly keeps the fatal errors of errs, in order.
func FatalOnly(errs []error) []error {
	return filter(errs, isFatal)
}

// WarningOnly keeps the warnings of errs, in order.
func WarningOnly(errs []error) []error {
	return filter(errs, isWarning)
}

func filter(errs []error, keep func(error) bool) []error {
	kept := make([]error, 0, len(errs))
	for _, err := range errs {
		if keep(err) {
			kept = append(kept, err)
		}
	}
	return kept
}
