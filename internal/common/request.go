package common

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

const maxMultipartMemory = 32 << 20

// ParseMultipart parses a multipart body, reporting malformed input as a ValidationError.
func ParseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return ValidationError("invalid multipart form", "body must be multipart/form-data")
	}
	return nil
}

// FormUpload returns the named file of a parsed multipart form, or nil when
// it was not sent. The caller closes it.
func FormUpload(r *http.Request, field string) (*Upload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	header := r.MultipartForm.File[field][0]
	f, err := header.Open()
	if err != nil {
		return nil, ValidationError("cannot read " + field + " file")
	}
	return &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, nil
}

// Close releases Body when it is closable.
func (u *Upload) Close() error {
	if u == nil {
		return nil
	}
	if c, ok := u.Body.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func CloseUploads(uploads ...*Upload) {
	for _, u := range uploads {
		u.Close()
	}
}

// QueryInt reads a positive integer query parameter; anything else is 0.
func QueryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func QueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func PathVar(r *http.Request, key string) string {
	return mux.Vars(r)[key]
}
