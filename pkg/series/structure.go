// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package series

// TagValue is one known combination of a tag name and a tag value.
type TagValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SourceStructure enumerates the tag keys, tag values and fields a source
// knows about.
type SourceStructure struct {
	TagKeys   []string   `json:"tagKeys"`
	TagValues []TagValue `json:"tagValues"`
	Fields    []string   `json:"fields"`
}
