// Package contacts implements the contact record store: a single JSON array
// file under the site root, appended to by one writer goroutine.
package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/starford/folio/internal/storage"
)

// Reader loads the record array from disk. It never fails: a missing or
// unparsable file reads as an empty array.
//
// Elements are kept as raw JSON. Records written by other tools may carry
// extra fields or values of other types, and they are listed and rewritten
// exactly as found.
type Reader struct {
	fs     storage.Provider
	name   string
	logger *slog.Logger
}

// NewReader creates a Reader for the store file name relative to the site root.
func NewReader(p storage.Provider, name string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{fs: p, name: name, logger: logger}
}

// Name returns the store file path relative to the site root.
func (r *Reader) Name() string {
	return r.name
}

// List returns every stored element, oldest first, as found in the file.
func (r *Reader) List(_ context.Context) []json.RawMessage {
	return r.load()
}

// load reads the store file. The returned slice is never nil.
func (r *Reader) load() []json.RawMessage {
	data, err := r.fs.Read(r.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("contact store missing, treating as empty", slog.String("file", r.name))
		} else {
			r.logger.Warn("contact store unreadable, treating as empty",
				slog.String("file", r.name),
				slog.String("error", err.Error()))
		}
		return []json.RawMessage{}
	}
	elems, err := decode(data)
	if err != nil {
		r.logger.Warn("contact store unreadable, treating as empty",
			slog.String("file", r.name),
			slog.String("error", err.Error()))
		return []json.RawMessage{}
	}
	return elems
}

// decode splits a JSON array into its elements. Anything other than an
// array (or null) is an error.
func decode(data []byte) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, err
	}
	if elems == nil {
		elems = []json.RawMessage{}
	}
	return elems, nil
}

func encode(elems []json.RawMessage) ([]byte, error) {
	return json.MarshalIndent(elems, "", "  ")
}

// recordID returns the numeric id of a stored element, if it has one.
func recordID(elem json.RawMessage) (int64, bool) {
	var v struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(elem, &v); err != nil {
		return 0, false
	}
	n, ok := v.ID.(float64)
	if !ok {
		return 0, false
	}
	return int64(n), true
}
