package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayush/research-intelligence/internal/models"
)

// UIState is the display state of a Controller.
type UIState int

const (
	Idle UIState = iota
	Submitting
	ReportReady
	Failed
)

func (s UIState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case ReportReady:
		return "report_ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

func (s UIState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *UIState) UnmarshalText(b []byte) error {
	for _, v := range []UIState{Idle, Submitting, ReportReady, Failed} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("research: unknown state %q", b)
}

// Snapshot is a point-in-time copy of a Controller's fields.
type Snapshot struct {
	State         UIState        `json:"state"`
	Query         string         `json:"query"`
	Email         string         `json:"email"`
	Message       string         `json:"message,omitempty"`
	ReportContent string         `json:"reportContent,omitempty"`
	Notifications []Notification `json:"notifications"`
}

// Controller mediates between form input, the report service and display state.
// At most one request is in flight per Controller.
type Controller struct {
	svc ReportService
	log *logrus.Entry

	mu     sync.Mutex
	state  UIState
	query  string
	email  string
	msg    string
	report string
	notes  []Notification
}

// NewController returns an Idle controller whose query field is pre-filled
// with defaultQuery.
func NewController(svc ReportService, log *logrus.Entry, defaultQuery string) *Controller {
	return &Controller{svc: svc, log: log, query: defaultQuery}
}

// Submit validates query and email and, if both are present, dispatches one
// request to the report service. The returned channel receives the attempt's
// result exactly once (nil or a *TransportError) and is then closed.
//
// While a previous attempt is pending Submit returns ErrSubmitInProgress and
// changes nothing. Blank input returns a *ValidationError without any network
// call and without a state change.
func (c *Controller) Submit(ctx context.Context, query, email string) (<-chan error, error) {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	c.query, c.email = query, email

	var missing []string
	if strings.TrimSpace(query) == "" {
		missing = append(missing, "query")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		c.pushLocked(validationNotice())
		c.mu.Unlock()
		return nil, &ValidationError{Fields: missing}
	}

	c.state = Submitting
	c.msg, c.report = "", ""
	c.mu.Unlock()

	req := models.ResearchRequest{Query: query, Email: email}
	c.log.WithField("query", query).Info("submitting research request")

	done := make(chan error, 1)
	go func() {
		defer close(done)
		resp, err := c.svc.GenerateReport(ctx, req)
		done <- c.resolve(req, resp, err)
	}()
	return done, nil
}

func (c *Controller) resolve(req models.ResearchRequest, resp *models.ResearchResponse, err error) error {
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil && !IsTransport(err) {
		err = &TransportError{Op: ResearchPath, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).Warn("research request failed")
		c.state = Failed
		c.pushLocked(transportNotice())
		return err
	}

	c.state = ReportReady
	c.msg = resp.Message
	c.report = resp.ReportContent
	c.pushLocked(successNotice(req.Email))
	c.log.WithField("email", req.Email).Info("research report ready")
	return nil
}

func (c *Controller) pushLocked(n Notification) {
	c.notes = append(c.notes, n)
	if over := len(c.notes) - maxNotifications; over > 0 {
		c.notes = append([]Notification(nil), c.notes[over:]...)
	}
}

// State returns the current UI state.
func (c *Controller) State() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Report returns the stored report fragment and whether one is ready.
func (c *Controller) Report() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report, c.state == ReportReady
}

// Dismiss removes the notification with the given ID.
func (c *Controller) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.notes {
		if n.ID == id {
			c.notes = append(c.notes[:i:i], c.notes[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:         c.state,
		Query:         c.query,
		Email:         c.email,
		Message:       c.msg,
		ReportContent: c.report,
		Notifications: append([]Notification{}, c.notes...),
	}
}
