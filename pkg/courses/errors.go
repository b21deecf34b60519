package courses

import "fmt"

// DiscoveryError wraps a failure during one discovery phase so callers
// can tell which area of the site broke.
type DiscoveryError struct {
	Area string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("course discovery failed in %s: %v", e.Area, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
