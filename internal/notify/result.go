package notify

import "encoding/json"

// Status is the outcome of one channel attempt.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the per-channel outcome reported back to the caller. Exactly one
// of the three variants is set; use Delivered, Skipped or Failed to build it.
type Result struct {
	Status Status
	Reason string
	Err    error
}

// Delivered reports a successful send.
func Delivered() Result { return Result{Status: StatusDelivered} }

// Skipped reports a channel whose prerequisites are missing.
func Skipped(reason string) Result { return Result{Status: StatusSkipped, Reason: reason} }

// Failed reports a transport error.
func Failed(err error) Result { return Result{Status: StatusFailed, Err: err} }

// Error returns the failure message, or "" for non-failed results.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// MarshalJSON renders {"ok":true}, {"skipped":true,"reason":...} or {"error":...}.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Status {
	case StatusDelivered:
		return json.Marshal(struct {
			OK bool `json:"ok"`
		}{true})
	case StatusSkipped:
		return json.Marshal(struct {
			Skipped bool   `json:"skipped"`
			Reason  string `json:"reason"`
		}{true, r.Reason})
	default:
		msg := r.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return json.Marshal(struct {
			Error string `json:"error"`
		}{msg})
	}
}
