package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

const maxBodyBytes = 1 << 20

// ContactStore persists contact records and lists the stored elements as
// found in the store file.
type ContactStore interface {
	Append(ctx context.Context, sub models.Submission) (models.ContactRecord, error)
	List(ctx context.Context) []json.RawMessage
}

// ContactNotifier is handed every stored record. Implementations must return
// without waiting on delivery.
type ContactNotifier interface {
	NotifyContact(rec models.ContactRecord)
}

// Handler holds API route handlers.
type Handler struct {
	store    ContactStore
	notifier ContactNotifier
}

// NewHandler creates a Handler. notifier may be nil, which disables
// notifications.
func NewHandler(store ContactStore, notifier ContactNotifier) *Handler {
	return &Handler{store: store, notifier: notifier}
}

// SubmitContact handles POST /api/contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusBadRequest, errorBody(msgInvalidJSON))
			return
		}
		slog.Error("read contact body failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgReadBody))
		return
	}

	sub, err := decodeSubmission(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(msgInvalidJSON))
		return
	}

	rec, err := h.store.Append(r.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrMissingFields):
			writeJSON(w, http.StatusBadRequest, errorBody(msgMissingFields))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			slog.Info("client gone before contact was accepted, nothing saved", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(msgSaveFailed))
		default:
			slog.Error("save contact failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(msgSaveFailed))
		}
		return
	}

	slog.Info("contact saved", slog.Int64("id", rec.ID))
	if h.notifier != nil {
		h.notifier.NotifyContact(rec)
	}
	writeJSON(w, http.StatusOK, SubmitResponse{Success: true, Entry: rec})
}

// ListContacts handles GET /api/contacts. It always answers 200 with an
// array; an unreadable store lists as empty.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List(r.Context()))
}
