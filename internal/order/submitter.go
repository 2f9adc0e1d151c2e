// Package order submits a finished selection as an order against the
// ticketing backend.  A submission runs the primary endpoint first and,
// when that definitively fails, retries exactly once against a
// best-effort fallback endpoint.  Every transport-level failure is
// converted into a SubmissionError before it leaves this package; raw
// HTTP errors never reach the presentation layer.
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mbltya/cinema-booking/internal/model"
)

// Reason classifies why a submission was refused or failed.
type Reason string

const (
	// ReasonEmptySelection – the draft contained no seats; rejected
	// locally, no network attempt is made.
	ReasonEmptySelection Reason = "EMPTY_SELECTION"
	// ReasonAlreadyInProgress – another submission is still in flight.
	ReasonAlreadyInProgress Reason = "ALREADY_IN_PROGRESS"
	// ReasonUnreachable – neither endpoint could be reached.
	ReasonUnreachable Reason = "UNREACHABLE"
	// ReasonServerRejected – an endpoint answered but refused the order.
	ReasonServerRejected Reason = "SERVER_REJECTED"
)

// SubmissionError is the only error type Submit returns.  Reason drives
// the caller's reaction; Message is safe to show to the user.
type SubmissionError struct {
	Reason  Reason
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed (%s): %s", e.Reason, e.Message)
}

// State describes where the submitter currently is in its lifecycle.
type State string

const (
	StateIdle       State = "IDLE"
	StateSubmitting State = "SUBMITTING"
	StateConfirmed  State = "CONFIRMED"
	StateDegraded   State = "DEGRADED"
	StateFailed     State = "FAILED"
)

// Submitter sends order drafts to the primary order endpoint with one
// sequential fallback attempt.  At most one submission may be in flight
// at a time; a concurrent Submit call is rejected immediately instead
// of racing two requests for the same seats.
type Submitter struct {
	httpClient  *http.Client
	primaryURL  string
	fallbackURL string

	mu    sync.Mutex
	state State
}

// NewSubmitter builds a Submitter for the given endpoints.  When
// httpClient is nil a default client with a request timeout is used.
func NewSubmitter(httpClient *http.Client, primaryURL, fallbackURL string) *Submitter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Submitter{
		httpClient:  httpClient,
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		state:       StateIdle,
	}
}

// State returns the outcome of the latest submission attempt, or
// StateSubmitting while one is in flight.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// primaryResponse is the expected success envelope of the primary
// endpoint: { "success": true, "order": { "id": ... } }.  Any other
// shape counts as a failure.
type primaryResponse struct {
	Success bool `json:"success"`
	Order   struct {
		ID json.Number `json:"id"`
	} `json:"order"`
}

// fallbackResponse is the success envelope of the best-effort endpoint:
// { "order": { "id": ... } } with no durability guarantee.
type fallbackResponse struct {
	Order struct {
		ID json.Number `json:"id"`
	} `json:"order"`
}

// Submit sends the draft to the primary endpoint and falls back once on
// failure.  It returns a confirmation carrying the server-assigned
// order id; Degraded is set when only the fallback accepted the order.
// On failure the caller's selection must be left untouched so the user
// can retry the whole call without re-selecting seats.
func (s *Submitter) Submit(ctx context.Context, draft model.OrderDraft) (*model.OrderConfirmation, error) {
	if len(draft.Seats) == 0 {
		return nil, &SubmissionError{
			Reason:  ReasonEmptySelection,
			Message: "select at least one seat before submitting",
		}
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return nil, &SubmissionError{
			Reason:  ReasonAlreadyInProgress,
			Message: "an order submission is already in progress",
		}
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	conf, err := s.attempt(ctx, draft)
	s.mu.Lock()
	switch {
	case err != nil:
		s.state = StateFailed
	case conf.Degraded:
		s.state = StateDegraded
	default:
		s.state = StateConfirmed
	}
	s.mu.Unlock()
	return conf, err
}

// attempt runs the two sequential network attempts.  The fallback is
// tried only after the primary has definitively failed.
func (s *Submitter) attempt(ctx context.Context, draft model.OrderDraft) (*model.OrderConfirmation, error) {
	var primary primaryResponse
	primaryErr := s.postJSON(ctx, s.primaryURL, draft, &primary)
	if primaryErr == nil && primary.Success && primary.Order.ID.String() != "" {
		return &model.OrderConfirmation{
			OrderID: primary.Order.ID.String(),
			Seats:   draft.Seats,
			Total:   draft.TotalPrice,
		}, nil
	}
	if primaryErr == nil {
		// 2xx with an unexpected body counts as a rejection.
		primaryErr = &endpointError{status: http.StatusOK, message: "malformed success response"}
	}

	var fb fallbackResponse
	fallbackErr := s.postJSON(ctx, s.fallbackURL, draft, &fb)
	if fallbackErr == nil && fb.Order.ID.String() != "" {
		return &model.OrderConfirmation{
			OrderID:  fb.Order.ID.String(),
			Seats:    draft.Seats,
			Total:    draft.TotalPrice,
			Degraded: true,
		}, nil
	}
	if fallbackErr == nil {
		fallbackErr = &endpointError{status: http.StatusOK, message: "malformed fallback response"}
	}
	return nil, classify(primaryErr, fallbackErr)
}

// endpointError records a non-success HTTP exchange: the server was
// reached but did not accept the order.
type endpointError struct {
	status  int
	message string
}

func (e *endpointError) Error() string {
	return fmt.Sprintf("endpoint returned %d: %s", e.status, e.message)
}

// classify converts the pair of attempt failures into the public
// taxonomy.  When either endpoint actually answered, the order was
// rejected; otherwise the backend is unreachable.
func classify(primaryErr, fallbackErr error) *SubmissionError {
	_, primaryAnswered := primaryErr.(*endpointError)
	_, fallbackAnswered := fallbackErr.(*endpointError)
	if primaryAnswered || fallbackAnswered {
		return &SubmissionError{
			Reason:  ReasonServerRejected,
			Message: "the order was not accepted, please try again",
		}
	}
	return &SubmissionError{
		Reason:  ReasonUnreachable,
		Message: "the booking service is unreachable, please try again later",
	}
}

// postJSON sends the draft to one endpoint and decodes the response
// body into out.  Non-2xx statuses and undecodable bodies become
// endpointError values; transport failures are returned as-is.
func (s *Submitter) postJSON(ctx context.Context, url string, draft model.OrderDraft, out interface{}) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &endpointError{status: resp.StatusCode, message: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &endpointError{status: resp.StatusCode, message: "undecodable response body"}
	}
	return nil
}
