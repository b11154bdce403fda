// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package flightapi

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/DataDog/kukur/pkg/errors"
)

// statusFromError translates a kind-tagged error to a gRPC status.
func statusFromError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && errors.KindOf(err) == errors.Unknown {
		return err
	}
	return status.Error(grpcCode(errors.KindOf(err)), err.Error())
}

func grpcCode(kind errors.Kind) codes.Code {
	switch kind {
	case errors.UnknownSource:
		return codes.NotFound
	case errors.InvalidSource, errors.InvalidData, errors.InvalidMetadata, errors.InvalidConfiguration:
		return codes.InvalidArgument
	case errors.NotSupported:
		return codes.Unimplemented
	case errors.Timeout:
		return codes.DeadlineExceeded
	case errors.Transient:
		return codes.Unavailable
	case errors.Unauthenticated:
		return codes.Unauthenticated
	}
	return codes.Internal
}
