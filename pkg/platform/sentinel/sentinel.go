package sentinel

import "errors"

// Infrastructure facts returned by stores and adapters (optionally wrapped).
// Services translate them into coded domain errors; they never reach HTTP.
//
//   - ErrNotFound: record does not exist
//   - ErrConflict: optimistic write lost a race with a concurrent writer
//   - ErrExpired: short-lived record is past its expiry
//   - ErrUnavailable: backing service or channel is not reachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
