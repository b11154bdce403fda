// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package flightapi

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/DataDog/kukur/pkg/apikey"
	"github.com/DataDog/kukur/pkg/errors"
)

func TestParseDataTicket(t *testing.T) {
	ticket, err := parseDataTicket([]byte(`{
		"query": "get_data",
		"selector": {"source": "sql", "name": "test-tag-1"},
		"start_date": "2020-01-01T00:00:00Z",
		"end_date": "2020-02-01T00:00:00Z"
	}`))
	require.NoError(t, err)
	assert.Equal(t, queryData, ticket.Query)
	assert.Equal(t, "sql", ticket.Selector.Source)
	assert.Equal(t, "test-tag-1", ticket.Selector.Tags.Name())
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), ticket.start)
	assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), ticket.end)
}

func TestParseDataTicketDefaultsToData(t *testing.T) {
	ticket, err := parseDataTicket([]byte(`{
		"selector": {"source": "sql", "name": "test-tag-1"},
		"start_date": "2020-01-01T00:00:00Z",
		"end_date": "2020-02-01T00:00:00Z"
	}`))
	require.NoError(t, err)
	assert.Equal(t, queryData, ticket.Query)
}

func TestParseDataTicketPlotNeedsIntervalCount(t *testing.T) {
	body := []byte(`{
		"query": "get_plot_data",
		"selector": {"source": "sql", "name": "test-tag-1"},
		"start_date": "2020-01-01T00:00:00Z",
		"end_date": "2020-02-01T00:00:00Z"
	}`)
	_, err := parseDataTicket(body)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidData, errors.KindOf(err))

	ticket, err := parseDataTicket([]byte(`{
		"query": "get_plot_data",
		"selector": {"source": "sql", "name": "test-tag-1"},
		"start_date": "2020-01-01T00:00:00Z",
		"end_date": "2020-02-01T00:00:00Z",
		"interval_count": 200
	}`))
	require.NoError(t, err)
	assert.Equal(t, 200, ticket.IntervalCount)
}

func TestParseDataTicketRejectsUnknownQuery(t *testing.T) {
	_, err := parseDataTicket([]byte(`{
		"query": "drop_table",
		"selector": {"source": "sql", "name": "test-tag-1"},
		"start_date": "2020-01-01T00:00:00Z",
		"end_date": "2020-02-01T00:00:00Z"
	}`))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidData, errors.KindOf(err))
}

func TestParseDataTicketRejectsBadDates(t *testing.T) {
	_, err := parseDataTicket([]byte(`{
		"selector": {"source": "sql", "name": "test-tag-1"},
		"start_date": "yesterday",
		"end_date": "2020-02-01T00:00:00Z"
	}`))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidData, errors.KindOf(err))
}

func TestParseSelector(t *testing.T) {
	selector, err := parseSelector([]byte(`{"source": "sql", "name": "test-tag-1", "field": "temperature"}`))
	require.NoError(t, err)
	assert.Equal(t, "sql", selector.Source)
	assert.Equal(t, "test-tag-1", selector.Tags.Name())
	assert.Equal(t, "temperature", selector.Field)
}

func TestParseSelectorNeedsSource(t *testing.T) {
	_, err := parseSelector([]byte(`{"name": "test-tag-1"}`))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidData, errors.KindOf(err))
}

func TestStatusFromError(t *testing.T) {
	testCases := []struct {
		err  error
		code codes.Code
	}{
		{errors.New(errors.UnknownSource, "nope"), codes.NotFound},
		{errors.New(errors.InvalidSource, "bad"), codes.InvalidArgument},
		{errors.New(errors.InvalidData, "bad"), codes.InvalidArgument},
		{errors.New(errors.InvalidMetadata, "bad"), codes.InvalidArgument},
		{errors.New(errors.InvalidConfiguration, "bad"), codes.InvalidArgument},
		{errors.New(errors.NotSupported, "no plots"), codes.Unimplemented},
		{errors.New(errors.Timeout, "too slow"), codes.DeadlineExceeded},
		{errors.New(errors.Transient, "retry later"), codes.Unavailable},
		{errors.New(errors.Unauthenticated, "who"), codes.Unauthenticated},
		{errors.New(errors.Unknown, "boom"), codes.Internal},
	}
	for _, testCase := range testCases {
		mapped, ok := status.FromError(statusFromError(testCase.err))
		require.True(t, ok)
		assert.Equal(t, testCase.code, mapped.Code(), testCase.err.Error())
	}

	assert.NoError(t, statusFromError(nil))
}

func TestStatusFromErrorKeepsStatusErrors(t *testing.T) {
	original := status.Error(codes.Unauthenticated, "invalid token")
	assert.Equal(t, original, statusFromError(original))
}

// fakeAuthConn records the handshake without a network.
type fakeAuthConn struct {
	incoming []byte
	outgoing []byte
}

func (c *fakeAuthConn) Read() ([]byte, error) {
	return c.incoming, nil
}

func (c *fakeAuthConn) Send(payload []byte) error {
	c.outgoing = payload
	return nil
}

func openAuth(t *testing.T) (*apiKeyAuth, string) {
	t.Helper()
	store, err := apikey.Open(filepath.Join(t.TempDir(), "api_key.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	key, err := store.Create("grafana")
	require.NoError(t, err)
	return &apiKeyAuth{keys: store}, key
}

func TestAuthenticateIssuesValidToken(t *testing.T) {
	auth, key := openAuth(t)

	payload, err := proto.Marshal(&flight.BasicAuth{Username: "grafana", Password: key})
	require.NoError(t, err)
	conn := &fakeAuthConn{incoming: payload}
	require.NoError(t, auth.Authenticate(conn))
	require.NotEmpty(t, conn.outgoing)

	identity, err := auth.IsValid(string(conn.outgoing))
	require.NoError(t, err)
	assert.Equal(t, "grafana", identity)
}

func TestAuthenticateRejectsInvalidKey(t *testing.T) {
	auth, key := openAuth(t)

	payload, err := proto.Marshal(&flight.BasicAuth{Username: "grafana", Password: key + "x"})
	require.NoError(t, err)
	err = auth.Authenticate(&fakeAuthConn{incoming: payload})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRevokedKeyInvalidatesToken(t *testing.T) {
	auth, key := openAuth(t)

	token := encodeToken("grafana", key)
	_, err := auth.IsValid(token)
	require.NoError(t, err)

	require.NoError(t, auth.keys.Revoke("grafana"))
	_, err = auth.IsValid(token)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestIsValidRejectsGarbage(t *testing.T) {
	auth, _ := openAuth(t)

	_, err := auth.IsValid("not-a-token")
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
