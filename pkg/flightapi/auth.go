// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package flightapi

import (
	"encoding/base64"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/DataDog/kukur/pkg/apikey"
	"github.com/DataDog/kukur/pkg/util/log"
)

// apiKeyAuth implements the Flight handshake against the API key store.
//
// The handshake reads a BasicAuth message carrying the key name and the key,
// validates it and hands back a bearer token. The token encodes the same
// credentials and is validated again on every call, so revoking a key also
// invalidates tokens already issued for it.
type apiKeyAuth struct {
	keys *apikey.Store
}

var _ flight.ServerAuthHandler = (*apiKeyAuth)(nil)

func (a *apiKeyAuth) Authenticate(conn flight.AuthConn) error {
	payload, err := conn.Read()
	if err != nil {
		return status.Error(codes.Unauthenticated, "no credentials presented")
	}
	var auth flight.BasicAuth
	if err := proto.Unmarshal(payload, &auth); err != nil {
		return status.Error(codes.Unauthenticated, "invalid handshake payload")
	}
	valid, err := a.keys.Validate(auth.Username, auth.Password)
	if err != nil {
		log.Errorf("API key validation failed: %v", err)
		return status.Error(codes.Internal, "api key validation failed")
	}
	if !valid {
		return status.Error(codes.Unauthenticated, "invalid api key")
	}
	return conn.Send([]byte(encodeToken(auth.Username, auth.Password)))
}

func (a *apiKeyAuth) IsValid(token string) (interface{}, error) {
	name, key, err := decodeToken(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	valid, err := a.keys.Validate(name, key)
	if err != nil {
		log.Errorf("API key validation failed: %v", err)
		return nil, status.Error(codes.Internal, "api key validation failed")
	}
	if !valid {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return name, nil
}

func encodeToken(name string, key string) string {
	return base64.StdEncoding.EncodeToString([]byte(name + ":" + key))
}

// decodeToken splits a token in the key name and the key. Keys are URL-safe
// base64 and never contain a colon, so the last colon ends the name.
func decodeToken(token string) (string, string, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", "", err
	}
	separator := strings.LastIndex(string(decoded), ":")
	if separator < 0 {
		return "", "", status.Error(codes.Unauthenticated, "malformed token")
	}
	return string(decoded[:separator]), string(decoded[separator+1:]), nil
}
