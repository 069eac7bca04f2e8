package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}

func WriteJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// WriteError renders err as the error envelope. Internal causes never leave the process.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	resp := ErrorResponse{Errors: []string{}}

	var e *Error
	if errors.As(err, &e) {
		resp.StatusCode = e.StatusCode()
		resp.Message = e.Message
		if len(e.Errors) > 0 {
			resp.Errors = e.Errors
		}
	} else {
		resp.StatusCode = http.StatusInternalServerError
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		if resp.Message == "" {
			resp.Message = "something went wrong"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	json.NewEncoder(w).Encode(resp)
}

// DecodeJSON reads a JSON body into dst, reporting malformed input as a
// ValidationError. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return ValidationError("invalid request body", typeErr.Field+" has the wrong type")
	}
	return ValidationError("invalid request body", "body must be a JSON object")
}

// OwnerFirst returns the error of check when it fails and bodyErr otherwise,
// so a caller who may not touch the resource learns that before anything
// about their input.
func OwnerFirst(bodyErr error, check func() error) error {
	if err := check(); err != nil {
		return err
	}
	return bodyErr
}
