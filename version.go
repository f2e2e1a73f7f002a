package nest

// Version is the release reported by the binary and the adapters.
// It is overridden at link time with -ldflags "-X github.com/aretw0/nest.Version=...".
var Version = "v0.1.0-dev"
