// Package version holds build metadata reported by the whoami and version
// commands.
package version

// Version is overridden at build time via -ldflags.
var Version = "0.4.0"

// Source is the canonical repository link.
const Source = "https://github.com/grvsrs/matrixbot"
