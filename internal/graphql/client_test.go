package graphql_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/graphql"
	"github.com/conneroisu/contactform/internal/testutils"
)

type capturedRequest struct {
	Query     string                     `json:"query"`
	Variables map[string]json.RawMessage `json:"variables"`
	APIKey    string                     `json:"-"`
	Auth      string                     `json:"-"`
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, chan capturedRequest) {
	t.Helper()
	requests := make(chan capturedRequest, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		req.APIKey = r.Header.Get("x-api-key")
		req.Auth = r.Header.Get("Authorization")
		requests <- req

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func sampleRecord() contact.Record {
	var draft contact.Draft
	draft.Set(contact.FieldFirstName, "Ana")
	draft.Set(contact.FieldEmail, "ana@x.com")
	return contact.NewRecord(draft)
}

func TestCreateContactSendsMutation(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK,
		`{"data":{"createContact":{"id":"c1","userID":"55253720-a134-430a-ac5e-0ffbe88c8790","firstName":"Ana"}}}`)

	client := graphql.NewClient(srv.URL,
		graphql.WithAPIKey("da2-key"),
		graphql.WithAuthToken("Bearer tok"),
		graphql.WithLogger(testutils.NewRecordingLogger()),
	)

	created, err := client.Create(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "c1", created.ID)
	assert.Equal(t, "Ana", *created.FirstName)

	req := <-requests
	assert.Equal(t, graphql.CreateContactMutation, req.Query)
	assert.Equal(t, "da2-key", req.APIKey)
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.JSONEq(t, `{
		"userID": "55253720-a134-430a-ac5e-0ffbe88c8790",
		"firstName": "Ana",
		"lastName": null,
		"email": "ana@x.com",
		"company": null,
		"note": null,
		"phoneNumber": null
	}`, string(req.Variables["input"]))
}

func TestTransportLogHidesContactData(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK,
		`{"data":{"createContact":{"id":"c1","firstName":"Ana","email":"ana@x.com"}}}`)
	logger := testutils.NewRecordingLogger()
	client := graphql.NewClient(srv.URL,
		graphql.WithAPIKey("da2-key"),
		graphql.WithLogger(logger),
	)

	require.NoError(t, client.CreateContact(context.Background(), sampleRecord()))

	var sawResponse bool
	for _, e := range logger.Entries() {
		assert.NotContains(t, e.Message, "ana@x.com")
		assert.NotContains(t, e.Message, `"Ana"`)
		assert.NotContains(t, e.Message, "da2-key")
		if strings.HasPrefix(e.Message, "<< ") {
			sawResponse = true
			assert.Contains(t, e.Message, `"firstName":"***"`)
		}
	}
	assert.True(t, sawResponse, "response body should still be traced")
}

func TestCreateContactOmitsUnsetAuthHeaders(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK, `{"data":{"createContact":{"id":"c1"}}}`)
	client := graphql.NewClient(srv.URL, graphql.WithLogger(testutils.NewRecordingLogger()))

	require.NoError(t, client.CreateContact(context.Background(), sampleRecord()))

	req := <-requests
	assert.Empty(t, req.APIKey)
	assert.Empty(t, req.Auth)
}

func TestCreateContactGraphQLError(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK,
		`{"data":null,"errors":[{"message":"Not Authorized to access createContact on type Mutation"}]}`)
	client := graphql.NewClient(srv.URL, graphql.WithLogger(testutils.NewRecordingLogger()))

	err := client.CreateContact(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.HasErrorCode(err, errors.ErrCodeCreateContact))
	assert.True(t, errors.HasErrorType(err, errors.ErrorTypeNetwork))
	assert.Contains(t, err.Error(), "Not Authorized")
}

func TestCreateContactNon200(t *testing.T) {
	srv, _ := newBackend(t, http.StatusBadGateway, `upstream down`)
	client := graphql.NewClient(srv.URL, graphql.WithLogger(testutils.NewRecordingLogger()))

	err := client.CreateContact(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCreateContactEmptyPayload(t *testing.T) {
	srv, _ := newBackend(t, http.StatusOK, `{"data":{"createContact":null}}`)
	client := graphql.NewClient(srv.URL, graphql.WithLogger(testutils.NewRecordingLogger()))

	err := client.CreateContact(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.HasErrorCode(err, errors.ErrCodeCreateContact))
}

func TestCreateContactTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := graphql.NewClient(srv.URL,
		graphql.WithTimeout(20*time.Millisecond),
		graphql.WithLogger(testutils.NewRecordingLogger()),
	)

	start := time.Now()
	err := client.CreateContact(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewClientFromConfig(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK, `{"data":{"createContact":{"id":"c1"}}}`)

	cfg := testutils.CreateTestConfig()
	cfg.API = config.APIConfig{Endpoint: srv.URL, APIKey: "k", Timeout: time.Second}
	client := graphql.NewClientFromConfig(&cfg.API, testutils.NewRecordingLogger())

	assert.Equal(t, srv.URL, client.Endpoint())
	require.NoError(t, client.CreateContact(context.Background(), sampleRecord()))
	assert.Equal(t, "k", (<-requests).APIKey)
}

func TestClientDrivesForm(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK, `{"data":{"createContact":{"id":"c1"}}}`)
	logger := testutils.NewRecordingLogger()
	client := graphql.NewClient(srv.URL, graphql.WithLogger(logger))

	form := contact.NewForm(client, &testutils.FakeNavigator{}, contact.WithLogger(logger))
	form.OnFieldChange(contact.Change(contact.FieldFirstName, "Ana"))
	form.OnFieldChange(contact.Change(contact.FieldEmail, "ana@x.com"))
	form.OnSubmit(context.Background())

	assert.Empty(t, logger.Errors())
	assert.Contains(t, string((<-requests).Variables["input"]), `"firstName":"Ana"`)
}
