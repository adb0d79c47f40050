// Package contact implements the contact form state machine and the senders
// that deliver its messages.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	// ErrIncomplete is returned by Submit when a required field is blank.
	ErrIncomplete = errors.New("required field missing")
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("submission in progress")
	// ErrUnknownField is returned by SetField for names outside Fields.
	ErrUnknownField = errors.New("unknown field")
)

const (
	DefaultResetAfter  = 5 * time.Second
	DefaultSendTimeout = 30 * time.Second
)

// Status is the submission state of a form.
type Status uint8

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSubmitted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSubmitted:
		return "submitted"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Fields are the four required inputs of the form.
type Fields struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Subject string `form:"subject" json:"subject" binding:"required"`
	Message string `form:"message" json:"message" binding:"required"`
}

// Missing returns the names of blank fields in form order.
func (f Fields) Missing() []string {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"subject", f.Subject},
		{"message", f.Message},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// Option configures a Form.
type Option func(*Form)

// WithResetAfter sets how long the submitted confirmation stays up.
func WithResetAfter(d time.Duration) Option {
	return func(f *Form) { f.resetAfter = d }
}

// WithSendTimeout bounds a single delivery attempt.
func WithSendTimeout(d time.Duration) Option {
	return func(f *Form) { f.sendTimeout = d }
}

// WithAfterFunc replaces time.AfterFunc for the reset timer.
func WithAfterFunc(fn func(time.Duration, func())) Option {
	return func(f *Form) { f.afterFunc = fn }
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

// Form is the contact form: idle -> submitting -> submitted -> idle, with
// failed reachable from submitting.
//
// A Form is owned by one goroutine. Delivery runs elsewhere and its
// completion, like the reset timer, is handed back through post, which must
// run the closure on the owning goroutine.
type Form struct {
	fields Fields
	status Status
	err    error

	sender      Sender
	post        func(func())
	resetAfter  time.Duration
	sendTimeout time.Duration
	afterFunc   func(time.Duration, func())
	now         func() time.Time

	// generation increments on each submission so a stale reset timer
	// cannot clear a newer one.
	generation int
	observers  map[int]func(Status)
	nextID     int
}

// NewForm returns an idle, empty form delivering through sender.
func NewForm(sender Sender, post func(func()), opts ...Option) *Form {
	f := &Form{
		sender:      sender,
		post:        post,
		resetAfter:  DefaultResetAfter,
		sendTimeout: DefaultSendTimeout,
		afterFunc:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		now:         time.Now,
		observers:   make(map[int]func(Status)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) Status() Status { return f.status }

func (f *Form) Fields() Fields { return f.fields }

// LastError is the delivery error behind StatusFailed, nil otherwise.
func (f *Form) LastError() error { return f.err }

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool { return f.status != StatusSubmitting }

// SetField echoes one input into the form. Editing a failed form makes it idle.
func (f *Form) SetField(name, value string) error {
	if f.status == StatusSubmitting {
		return ErrBusy
	}
	switch name {
	case "name":
		f.fields.Name = value
	case "email":
		f.fields.Email = value
	case "subject":
		f.fields.Subject = value
	case "message":
		f.fields.Message = value
	default:
		return fmt.Errorf("setting %q: %w", name, ErrUnknownField)
	}
	f.leaveFailed()
	return nil
}

// SetFields replaces all inputs at once.
func (f *Form) SetFields(fields Fields) error {
	if f.status == StatusSubmitting {
		return ErrBusy
	}
	f.fields = fields
	f.leaveFailed()
	return nil
}

func (f *Form) leaveFailed() {
	if f.status == StatusFailed {
		f.err = nil
		f.setStatus(StatusIdle)
	}
}

// Submit starts delivery of the current fields. It rejects blank fields with
// ErrIncomplete and a second submission with ErrBusy, leaving state untouched
// in both cases. origin is an opaque sender reference passed to the Sender.
func (f *Form) Submit(ctx context.Context, origin string) error {
	if f.status == StatusSubmitting {
		return ErrBusy
	}
	if missing := f.fields.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	f.generation++
	gen := f.generation
	msg := Message{Fields: f.fields, Origin: origin, SentAt: f.now()}
	f.err = nil
	f.setStatus(StatusSubmitting)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.sendTimeout)
	go func() {
		defer cancel()
		err := f.sender.Send(sendCtx, msg)
		f.post(func() { f.complete(gen, err) })
	}()
	return nil
}

func (f *Form) complete(gen int, err error) {
	if gen != f.generation || f.status != StatusSubmitting {
		return
	}
	if err != nil {
		log.Printf("contact: delivery failed: %v", err)
		f.err = err
		f.setStatus(StatusFailed)
		return
	}
	f.fields = Fields{}
	f.setStatus(StatusSubmitted)
	f.afterFunc(f.resetAfter, func() {
		f.post(func() { f.expire(gen) })
	})
}

func (f *Form) expire(gen int) {
	if gen != f.generation || f.status != StatusSubmitted {
		return
	}
	f.setStatus(StatusIdle)
}

// Subscribe registers fn for every status change.
func (f *Form) Subscribe(fn func(Status)) (cancel func()) {
	id := f.nextID
	f.nextID++
	f.observers[id] = fn
	return func() { delete(f.observers, id) }
}

func (f *Form) setStatus(s Status) {
	if f.status == s {
		return
	}
	f.status = s
	for _, fn := range f.observers {
		fn(s)
	}
}
