package constants

// Version is the release version of the whole indexer binary.
const Version = "v0.0.1"
