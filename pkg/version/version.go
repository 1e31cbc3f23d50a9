package version

// Version is the latest tag on git for releases. On non-release commits, it
// may include additional information such as the most recent commit hash.
// It's overridden at build time via -ldflags.
var Version = "dev"
