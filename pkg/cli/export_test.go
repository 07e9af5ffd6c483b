package cli

// NewApp is exported for testing
var NewApp = newApp

// PrintSummary is exported for testing
var PrintSummary = printSummary

// GetIndexConfig is exported for testing
var GetIndexConfig = getIndexConfig
