// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package flightapi exposes the gateway over Arrow Flight. Metadata requests
// travel as JSON action bodies; data leaves as Arrow record batches.
package flightapi

import (
	"context"
	"encoding/json"
	"net"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/DataDog/kukur/pkg/app"
	"github.com/DataDog/kukur/pkg/config"
	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/util/log"
)

// Server serves the gateway operations over Arrow Flight.
type Server struct {
	flight.BaseFlightServer
	app *app.App
	cfg config.FlightConfig
}

// NewServer creates a Flight server for the given application.
func NewServer(application *app.App, cfg config.FlightConfig) *Server {
	server := &Server{app: application, cfg: cfg}
	switch cfg.Authentication {
	case "none", "no-auth":
		log.Warnf("Authentication is disabled")
	default:
		server.SetAuthHandler(&apiKeyAuth{keys: application.ApiKeys()})
	}
	return server
}

// Serve binds the Flight endpoint and blocks until the listener fails.
func (s *Server) Serve() error {
	listener := flight.NewServerWithMiddleware(nil)
	if err := listener.Init(net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))); err != nil {
		return err
	}
	listener.RegisterFlightService(s)
	log.Infof("Arrow Flight endpoint listening on %s", listener.Addr())
	return listener.Serve()
}

// actions served by DoAction, in the order ListActions reports them.
var actionTypes = []flight.ActionType{
	{Type: "search", Description: "Stream all series of a source matching a selector."},
	{Type: "get_metadata", Description: "Return the metadata of one series."},
	{Type: "get_source_structure", Description: "Describe the tags and fields of a source."},
	{Type: "list_sources", Description: "List the configured source names."},
	{Type: "verify_api_key", Description: "Verify that the connection is authenticated."},
}

// ListActions enumerates the supported actions.
func (s *Server) ListActions(_ *flight.Empty, stream flight.FlightService_ListActionsServer) error {
	for i := range actionTypes {
		if err := stream.Send(&actionTypes[i]); err != nil {
			return err
		}
	}
	return nil
}

// DoAction dispatches one metadata operation. Bodies and results are JSON.
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	switch action.Type {
	case "search":
		return statusFromError(s.search(action.Body, stream))
	case "get_metadata":
		return statusFromError(s.getMetadata(action.Body, stream))
	case "get_source_structure":
		return statusFromError(s.getSourceStructure(action.Body, stream))
	case "list_sources":
		return statusFromError(s.listSources(stream))
	case "verify_api_key":
		// an unauthenticated caller does not get here
		return statusFromError(sendJSON(stream, map[string]bool{"verified": true}))
	}
	return statusFromError(errors.Newf(errors.NotSupported, "unknown action %q", action.Type))
}

// search streams one result per matching series: full metadata when the
// source provides it, the bare selector otherwise.
func (s *Server) search(body []byte, stream flight.FlightService_DoActionServer) error {
	selector, err := parseSelector(body)
	if err != nil {
		return err
	}
	results, err := s.app.Search(stream.Context(), selector)
	if err != nil {
		return err
	}
	defer results.Close()
	for results.Next() {
		result := results.Current()
		if result.IsMetadata() {
			err = sendJSON(stream, result.Metadata)
		} else {
			err = sendJSON(stream, result.Selector)
		}
		if err != nil {
			return err
		}
	}
	return results.Err()
}

func (s *Server) getMetadata(body []byte, stream flight.FlightService_DoActionServer) error {
	selector, err := parseSelector(body)
	if err != nil {
		return err
	}
	metadata, err := s.app.GetMetadata(stream.Context(), selector)
	if err != nil {
		return err
	}
	return sendJSON(stream, metadata)
}

func (s *Server) getSourceStructure(body []byte, stream flight.FlightService_DoActionServer) error {
	selector, err := parseSelector(body)
	if err != nil {
		return err
	}
	structure, err := s.app.GetSourceStructure(stream.Context(), selector)
	if err != nil {
		return err
	}
	return sendJSON(stream, structure)
}

func (s *Server) listSources(stream flight.FlightService_DoActionServer) error {
	return sendJSON(stream, s.app.ListSources())
}

func sendJSON(stream flight.FlightService_DoActionServer, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return stream.Send(&flight.Result{Body: body})
}

// DoGet serves the data of one series. The ticket is a JSON document naming
// the query, the selector and the time range; the answer is one record batch.
func (s *Server) DoGet(request *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ticket, err := parseDataTicket(request.Ticket)
	if err != nil {
		return statusFromError(err)
	}

	record, err := s.fetch(stream.Context(), ticket)
	if err != nil {
		return statusFromError(err)
	}
	defer record.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(record.Schema()))
	defer writer.Close() //nolint:errcheck
	if err := writer.Write(record); err != nil {
		return statusFromError(err)
	}
	return nil
}

func (s *Server) fetch(ctx context.Context, ticket *dataTicket) (arrow.Record, error) {
	if ticket.Query == queryPlotData {
		return s.app.GetPlotData(ctx, ticket.Selector, ticket.start, ticket.end, ticket.IntervalCount)
	}
	return s.app.GetData(ctx, ticket.Selector, ticket.start, ticket.end)
}
