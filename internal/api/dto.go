package api

import (
	"encoding/json"
	"fmt"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Client-facing error messages.
const (
	msgInvalidJSON   = "Invalid JSON"
	msgMissingFields = "Missing fields"
	msgReadBody      = "Error reading body"
	msgSaveFailed    = "Could not save contact"
)

// SubmitResponse is returned after a contact is stored.
type SubmitResponse struct {
	Success bool                 `json:"success"`
	Entry   models.ContactRecord `json:"entry"`
}

// decodeSubmission parses a contact form body. Unparsable JSON is
// ErrInvalidBody. Any other JSON value is accepted at this stage; fields that
// are absent or not strings are left empty for the presence check.
func decodeSubmission(body []byte) (models.Submission, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Submission{}, fmt.Errorf("%w: %v", apperr.ErrInvalidBody, err)
	}
	obj, _ := raw.(map[string]any)
	var sub models.Submission
	sub.Name, _ = obj["name"].(string)
	sub.Email, _ = obj["email"].(string)
	sub.Message, _ = obj["message"].(string)
	return sub, nil
}
