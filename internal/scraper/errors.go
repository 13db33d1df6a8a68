package scraper

import (
	"fmt"
)

// AuthenticationError is terminal for a session: no retry inside the run,
// and the operator channel is alerted. No budget is consumed.
type AuthenticationError struct {
	Distributor string
	Err         error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authentication failed for %s", e.Distributor)
	}
	return fmt.Sprintf("authentication failed for %s: %v", e.Distributor, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// TransientScrapeError ends the session early; partial results collected
// before the failure are kept and pipelined.
type TransientScrapeError struct {
	Distributor string
	Err         error
}

func (e *TransientScrapeError) Error() string {
	return fmt.Sprintf("scrape failed for %s: %v", e.Distributor, e.Err)
}

func (e *TransientScrapeError) Unwrap() error { return e.Err }
