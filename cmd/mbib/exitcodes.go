package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (missing config, invalid paths)
	ExitDataError    = 3 // Data error (malformed identifier, null record)
	ExitNetworkError = 4 // Connectivity failure reaching a repository
	ExitNoFile       = 5 // No file associated with the record
)
