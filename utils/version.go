package utils

// Set at build time with -ldflags "-X github.com/termlog/cirstore/utils.Tag=..."
var (
	Tag        = "dev"
	GitHash    = "unknown"
	BuildStamp = "unknown"
)
