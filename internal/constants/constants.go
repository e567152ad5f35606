package constants

import "time"

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// MaxInformationLength bounds the free-text information stored on a rule.
	MaxInformationLength = 100
)

const (
	DefaultPort = 8888
)

const (
	MetadataAddedBy     = "added_by"
	MetadataInformation = "information"
	MetadataDate        = "date"
	MetadataDescription = "description"
)
