package main

// Exit codes used across shelf commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
	ExitInputError  = 3 // Input error (not a readable PDF)
	ExitNotFound    = 4 // Record not found
)
