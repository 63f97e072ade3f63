package errors

import "errors"

var ErrNotFound = errors.New("alert not found")
