// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package flightapi

import (
	"encoding/json"
	"time"

	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/series"
)

// dataTicket is the JSON body of a DoGet ticket.
type dataTicket struct {
	Query         string                `json:"query"`
	Selector      series.SeriesSelector `json:"selector"`
	StartDate     string                `json:"start_date"`
	EndDate       string                `json:"end_date"`
	IntervalCount int                   `json:"interval_count,omitempty"`

	start time.Time
	end   time.Time
}

// queries accepted in a DoGet ticket.
const (
	queryData     = "get_data"
	queryPlotData = "get_plot_data"
)

func parseDataTicket(body []byte) (*dataTicket, error) {
	ticket := &dataTicket{Query: queryData}
	if err := json.Unmarshal(body, ticket); err != nil {
		return nil, errors.Newf(errors.InvalidData, "invalid ticket: %v", err)
	}
	if ticket.Query != queryData && ticket.Query != queryPlotData {
		return nil, errors.Newf(errors.InvalidData, "unknown query %q", ticket.Query)
	}
	var err error
	if ticket.start, err = time.Parse(time.RFC3339, ticket.StartDate); err != nil {
		return nil, errors.Newf(errors.InvalidData, "invalid start_date: %v", err)
	}
	if ticket.end, err = time.Parse(time.RFC3339, ticket.EndDate); err != nil {
		return nil, errors.Newf(errors.InvalidData, "invalid end_date: %v", err)
	}
	if ticket.Query == queryPlotData && ticket.IntervalCount <= 0 {
		return nil, errors.New(errors.InvalidData, "interval_count must be positive")
	}
	return ticket, nil
}

func parseSelector(body []byte) (series.SeriesSelector, error) {
	var selector series.SeriesSelector
	if err := json.Unmarshal(body, &selector); err != nil {
		return selector, errors.Newf(errors.InvalidData, "invalid selector: %v", err)
	}
	if selector.Source == "" {
		return selector, errors.New(errors.InvalidData, "selector has no source")
	}
	return selector, nil
}
