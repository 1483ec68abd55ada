// Package contact implements the New Contact form: a draft of six text
// fields, a one-way validated flag, and the submit and cancel actions that
// hand the draft to a Creator or leave through a Navigator.
//
// A Form corresponds to one mounted form. Front-ends (the HTTP handlers, the
// live WebSocket session, the terminal UI, and the submit command) translate
// their own events into OnFieldChange, OnSubmit and OnCancel calls.
package contact

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/validation"
)

// ContactsPath is where cancel navigates to.
const ContactsPath = "/contacts"

// Creator issues the create contact mutation.
type Creator interface {
	CreateContact(ctx context.Context, record Record) error
}

// Navigator performs a client-side route transition.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(ctx context.Context, record Record) error

// CreateContact calls fn.
func (fn CreatorFunc) CreateContact(ctx context.Context, record Record) error {
	return fn(ctx, record)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls fn.
func (fn NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return fn(ctx, path)
}

// Policy controls the two behaviors that are deliberately configurable.
type Policy struct {
	// BlockInvalid skips the mutation when the draft fails validation.
	// When false, an invalid draft is still sent.
	BlockInvalid bool
	// SingleFlight coalesces overlapping submits of one form that carry
	// the same record into a single mutation call.
	SingleFlight bool
}

// DefaultPolicy sends invalid drafts and coalesces overlapping submits.
func DefaultPolicy() Policy {
	return Policy{BlockInvalid: false, SingleFlight: true}
}

// SubmitResult describes what one OnSubmit call did.
type SubmitResult struct {
	// Validity is the constraint validation outcome of the submitted draft.
	Validity validation.Result
	// DefaultPrevented is set when the draft was invalid; front-ends use it
	// to suppress their default post-submit behavior.
	DefaultPrevented bool
	// Record is the payload built for this attempt.
	Record Record
	// Attempted is false only when BlockInvalid stopped the mutation.
	Attempted bool
	// Shared is set when the call was coalesced with an overlapping submit
	// of an identical record.
	Shared bool
}

// Form is one mounted New Contact form. It is safe for concurrent use.
type Form struct {
	id        string
	creator   Creator
	navigator Navigator
	logger    logging.Logger
	policy    Policy
	flights   *singleflight.Group

	mu        sync.RWMutex
	draft     Draft
	validated bool
}

// Option configures a Form.
type Option func(*Form)

// WithID sets the form instance id. Submits are coalesced per id and record.
func WithID(id string) Option {
	return func(f *Form) {
		if id != "" {
			f.id = id
		}
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(logger logging.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(f *Form) {
		f.policy = p
	}
}

// WithFlightGroup shares a singleflight group between Form values that
// stand for the same mounted form, such as successive HTTP requests.
func WithFlightGroup(g *singleflight.Group) Option {
	return func(f *Form) {
		if g != nil {
			f.flights = g
		}
	}
}

// NewForm mounts a new form.
func NewForm(creator Creator, navigator Navigator, opts ...Option) *Form {
	if creator == nil {
		panic("contact.NewForm: creator cannot be nil")
	}
	if navigator == nil {
		panic("contact.NewForm: navigator cannot be nil")
	}

	f := &Form{
		id:        uuid.NewString(),
		creator:   creator,
		navigator: navigator,
		policy:    DefaultPolicy(),
		flights:   &singleflight.Group{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.NewLogger(nil)
	}
	f.logger = f.logger.WithComponent("contact_form").With("form_id", f.id)
	return f
}

// ID returns the form instance id.
func (f *Form) ID() string {
	return f.id
}

// Policy returns the active policy.
func (f *Form) Policy() Policy {
	return f.policy
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.draft.Clone()
}

// Validated reports whether a submit has been attempted. It never reverts.
func (f *Form) Validated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.validated
}

// Validity checks the current draft without submitting.
func (f *Form) Validity() validation.Result {
	return validation.CheckValidity(f.Draft().Inputs())
}

// OnFieldChange stores the new value of one field. No validation runs here.
func (f *Form) OnFieldChange(change FieldChange) {
	f.mu.Lock()
	f.draft.Set(change.Field, change.Value)
	f.mu.Unlock()
}

// Set applies a change addressed by wire name.
func (f *Form) Set(name, value string) error {
	field, err := ParseField(name)
	if err != nil {
		return err
	}
	f.OnFieldChange(Change(field, value))
	return nil
}

// OnSubmit validates the draft, marks the form validated, and sends the
// record. A failed mutation is logged and otherwise swallowed.
func (f *Form) OnSubmit(ctx context.Context) SubmitResult {
	f.mu.Lock()
	draft := f.draft.Clone()
	f.mu.Unlock()

	validity := validation.CheckValidity(draft.Inputs())
	result := SubmitResult{
		Validity:         validity,
		DefaultPrevented: !validity.Valid,
	}

	f.mu.Lock()
	f.validated = true
	f.mu.Unlock()

	result.Record = NewRecord(draft)

	if !validity.Valid && f.policy.BlockInvalid {
		f.logger.Debug(ctx, "Skipping create contact for invalid draft",
			"invalid", validity.InvalidNames())
		return result
	}

	result.Attempted = true
	result.Shared = f.create(ctx, result.Record)
	return result
}

func (f *Form) create(ctx context.Context, record Record) bool {
	if !f.policy.SingleFlight {
		_ = f.send(ctx, record)
		return false
	}

	// The shared call outlives any one caller; the client timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := f.flights.DoChan(f.flightKey(record), func() (interface{}, error) {
		return nil, f.send(flightCtx, record)
	})

	select {
	case res := <-ch:
		return res.Shared
	case <-ctx.Done():
		return false
	}
}

// flightKey coalesces only submits of the same form carrying the same payload.
func (f *Form) flightKey(record Record) string {
	return f.id + "/" + record.Digest()
}

func (f *Form) send(ctx context.Context, record Record) error {
	perf := logging.StartOperation(f.logger, "create_contact")
	if err := f.creator.CreateContact(ctx, record); err != nil {
		perf.EndWithError(ctx, err)
		f.logger.Error(ctx, err, "error creating contacts")
		return err
	}
	perf.End(ctx)
	return nil
}

// OnCancel navigates back to the contacts listing. The draft is left as is.
func (f *Form) OnCancel(ctx context.Context) error {
	return f.navigator.Navigate(ctx, ContactsPath)
}
