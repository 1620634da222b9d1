package version

// Version is set at build time with -ldflags "-X github.com/bnema/xiq-poe-check/internal/version.Version=...".
var Version = "dev"
