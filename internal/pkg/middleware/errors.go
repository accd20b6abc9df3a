package middleware

import "errors"

var errInvalidHeader = errors.New("invalid authorization header format")
