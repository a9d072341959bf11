package models

import (
	"testing"
	"time"
)

func TestSubmissionValidate(t *testing.T) {
	cases := []struct {
		name    string
		sub     Submission
		wantErr bool
	}{
		{"complete", Submission{Name: "A", Email: "a@x.com", Message: "hi"}, false},
		{"no name", Submission{Email: "a@x.com", Message: "hi"}, true},
		{"no email", Submission{Name: "A", Message: "hi"}, true},
		{"no message", Submission{Name: "A", Email: "a@x.com"}, true},
		{"empty", Submission{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sub.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewContactRecord(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("X", 3600))
	rec := NewContactRecord(Submission{Name: "A", Email: "a@x.com", Message: "hi"}, now)

	if rec.ID != now.UnixMilli() {
		t.Errorf("id = %d, want %d", rec.ID, now.UnixMilli())
	}
	if rec.CreatedAt != "2026-03-04T04:06:07.891Z" {
		t.Errorf("createdAt = %q", rec.CreatedAt)
	}
	if rec.Name != "A" || rec.Email != "a@x.com" || rec.Message != "hi" {
		t.Errorf("fields not copied: %+v", rec)
	}
}
