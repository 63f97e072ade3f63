package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "officehub/pkg/errors"
)

// QueryInt returns nil when the parameter is absent.
func QueryInt(r *http.Request, key string) (*int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return &v, nil
}

func QueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// DecodeJSON decodes a request body and rejects trailing data.
func DecodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(target); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("Request body is empty")
		}
		return apperrors.InvalidInput("Invalid JSON: " + err.Error())
	}
	if decoder.More() {
		return apperrors.InvalidInput("Invalid JSON: unexpected data after object")
	}
	return nil
}
