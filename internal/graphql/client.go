// Package graphql sends the create contact mutation to an AppSync-style
// GraphQL API.
package graphql

import (
	"context"
	"time"

	"github.com/machinebox/graphql"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/logging"
)

// CreateContactMutation is the document generated by the Amplify codegen for
// the Contact model.
const CreateContactMutation = `mutation CreateContact($input: CreateContactInput!) {
  createContact(input: $input) {
    id
    userID
    firstName
    lastName
    email
    company
    note
    phoneNumber
    createdAt
    updatedAt
  }
}`

// CreatedContact is the createContact selection set.
type CreatedContact struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userID"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Company     *string `json:"company"`
	Note        *string `json:"note"`
	PhoneNumber *string `json:"phoneNumber"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type createContactResponse struct {
	CreateContact *CreatedContact `json:"createContact"`
}

// Client implements contact.Creator over HTTP.
type Client struct {
	gql       *graphql.Client
	endpoint  string
	apiKey    string
	authToken string
	timeout   time.Duration
	logger    logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends the key in the x-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithAuthToken sends the token in the Authorization header.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// WithTimeout bounds each mutation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		gql:      graphql.NewClient(endpoint),
		endpoint: endpoint,
		logger:   logging.NewLogger(logging.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("graphql")
	c.gql.Log = func(s string) {
		c.logger.Debug(context.Background(), logging.SanitizeForLog(s))
	}
	return c
}

// NewClientFromConfig builds a Client from the api section.
func NewClientFromConfig(cfg *config.APIConfig, logger logging.Logger) *Client {
	return NewClient(cfg.Endpoint,
		WithAPIKey(cfg.APIKey),
		WithAuthToken(cfg.AuthToken),
		WithTimeout(cfg.Timeout),
		WithLogger(logger),
	)
}

// Endpoint returns the GraphQL URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// CreateContact sends record as the mutation input. Any transport failure or
// GraphQL error is returned as an ERR_CREATE_CONTACT network error.
func (c *Client) CreateContact(ctx context.Context, record contact.Record) error {
	_, err := c.Create(ctx, record)
	return err
}

// Create is CreateContact returning the stored contact.
func (c *Client) Create(ctx context.Context, record contact.Record) (*CreatedContact, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := graphql.NewRequest(CreateContactMutation)
	req.Var("input", record)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", c.authToken)
	}

	op := logging.StartOperation(c.logger, "create_contact")

	var resp createContactResponse
	if err := c.gql.Run(ctx, req, &resp); err != nil {
		op.EndWithError(ctx, err)
		return nil, errors.ErrCreateContact(err).WithContext("endpoint", c.endpoint)
	}
	op.End(ctx)

	if resp.CreateContact == nil {
		return nil, errors.ErrCreateContact(nil).
			WithContext("endpoint", c.endpoint).
			WithContext("reason", "empty createContact payload")
	}
	return resp.CreateContact, nil
}
