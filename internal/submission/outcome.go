package submission

import (
	"encoding/json"
	"net/http"

	"github.com/MeKo-Tech/sheetscan/internal/extract"
)

// Outcome is the client-facing result of one submission. It is one of
// Success, Warning, Rejected or Failed.
type Outcome interface {
	// HTTPStatus returns the status code the outcome is served with.
	HTTPStatus() int
	// Label is a short name used for logs and metrics.
	Label() string
	isOutcome()
}

// Success means rows were appended.
type Success struct {
	Message   string
	RowsAdded int64
	Rows      []extract.DemandRow
}

// Warning means the pipeline ran but found no valid rows. Nothing was appended.
type Warning struct {
	Message string
}

// Rejected means the request was invalid. No side effects were performed.
type Rejected struct {
	Error string
}

// Failed means a downstream call failed.
type Failed struct {
	Message string
	Details string
}

func (Success) HTTPStatus() int  { return http.StatusOK }
func (Warning) HTTPStatus() int  { return http.StatusOK }
func (Rejected) HTTPStatus() int { return http.StatusBadRequest }
func (Failed) HTTPStatus() int   { return http.StatusInternalServerError }

func (Success) Label() string  { return "success" }
func (Warning) Label() string  { return "warning" }
func (Rejected) Label() string { return "rejected" }
func (Failed) Label() string   { return "error" }

func (Success) isOutcome()  {}
func (Warning) isOutcome()  {}
func (Rejected) isOutcome() {}
func (Failed) isOutcome()   {}

type statusBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RowsAdded *int64 `json:"rows_added,omitempty"`
	Details   string `json:"details,omitempty"`
}

func (s Success) MarshalJSON() ([]byte, error) {
	n := s.RowsAdded
	return json.Marshal(statusBody{Status: "success", Message: s.Message, RowsAdded: &n})
}

func (w Warning) MarshalJSON() ([]byte, error) {
	var zero int64
	return json.Marshal(statusBody{Status: "warning", Message: w.Message, RowsAdded: &zero})
}

func (r Rejected) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error string `json:"error"`
	}{Error: r.Error})
}

func (f Failed) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details string `json:"details"`
	}{Status: "error", Message: f.Message, Details: f.Details})
}
