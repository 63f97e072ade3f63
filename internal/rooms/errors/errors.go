package errors

import "errors"

var ErrNotFound = errors.New("meeting room not found")
