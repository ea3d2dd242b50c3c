package app

// Build information, set with -ldflags "-X github.com/hyperifyio/rewind/internal/app.BuildVersion=..."
// at release time. It is recorded in the run manifest and the default
// User-Agent.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)
