package version

// Set at build time via -ldflags.
var (
	AppName   = "bassline"
	Version   = "dev"
	BuildDate = "unknown"
)
