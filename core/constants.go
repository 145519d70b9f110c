package core

// Version is the Argus release version reported by the API and CLI.
const Version = "1.0.0"

// MaxErrorMessageLength bounds error text returned to API clients.
const MaxErrorMessageLength = 512
