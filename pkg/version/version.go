// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package version holds the build version, overridden at link time.
package version

// Version is the version of the gateway.
var Version = "0.0.0"

// Commit is the git commit the gateway was built from.
var Commit = ""
