// Package repository holds the MySQL backed stores of the service.  These
// sentinel values let handlers tell failure scenarios apart.
package repository

import "errors"

// ErrDisabled is returned when a store was not configured, for example
// when the submission journal is switched off.  Handlers translate this
// into an HTTP 404 response.
var ErrDisabled = errors.New("store disabled")
