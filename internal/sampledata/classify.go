package sampledata

import (
	"encoding/json"
	"errors"
)

type entryKind int

const (
	kindBundle entryKind = iota
	kindResource
)

var errNoResourceType = errors.New("payload has no resourceType")

// classify inspects the top-level resourceType discriminator to decide
// whether a payload is a transaction bundle or a standalone resource. A
// malformed payload is not a classifier failure; callers count it as a zero
// outcome and move on.
func classify(payload []byte) (entryKind, string, error) {
	var header struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return kindResource, "", err
	}
	if header.ResourceType == "" {
		return kindResource, "", errNoResourceType
	}
	if header.ResourceType == "Bundle" {
		return kindBundle, header.ResourceType, nil
	}
	return kindResource, header.ResourceType, nil
}
