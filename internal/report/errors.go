package report

import "errors"

// Sentinel errors for report sources.
var (
	ErrServer   = errors.New("dashboard server error")
	ErrResponse = errors.New("invalid dashboard response")
)
