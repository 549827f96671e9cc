package table

import "fmt"

// IllegalActionError reports an action outside the current legal set or
// sized below the minimum. It is recoverable: the same player is
// re-prompted and the pending deadline is unchanged.
type IllegalActionError struct {
	Player string
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action by %s: %s", e.Player, e.Reason)
}

// TableConfigurationError reports a malformed table configuration at
// startup. It fails engine construction and is surfaced to the
// operator, never auto-retried.
type TableConfigurationError struct {
	Reason string
}

func (e *TableConfigurationError) Error() string {
	return "table configuration: " + e.Reason
}
