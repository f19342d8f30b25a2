package common

// AuthHeaderName is the HTTP header carrying the guest-session token on
// API requests.
const AuthHeaderName = "Authorization"

// MaxInquireBatchSize bounds how many file descriptors a single
// inquire-upload request may carry.
const MaxInquireBatchSize = 5
