// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(UnknownSource, "no source named 'test'")
	assert.Equal(t, UnknownSource, KindOf(err))
	assert.Equal(t, Unknown, KindOf(stderrors.New("plain")))
	assert.Equal(t, "unknown source: no source named 'test'", err.Error())
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("while fetching: %w", New(Timeout, "deadline exceeded"))
	assert.Equal(t, Timeout, KindOf(err))

	wrapped := Wrap(Transient, stderrors.New("connection reset"))
	assert.Equal(t, Transient, KindOf(wrapped))
	assert.Nil(t, Wrap(Transient, nil))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{New(Transient, "flaky"), true},
		{New(Timeout, "slow"), true},
		{stderrors.New("untagged"), true},
		{New(InvalidSource, "bad type"), false},
		{New(UnknownSource, "missing"), false},
		{New(NotSupported, "no plot"), false},
		{New(InvalidData, "missing column"), false},
		{New(Unauthenticated, "bad key"), false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.retryable, IsRetryable(tc.err), "%v", tc.err)
	}
}
