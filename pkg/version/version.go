package version

// Version is the application version, set at build time via ldflags.
// Example: go build -ldflags "-X github.com/paparr/paparr/pkg/version.Version=1.0.0".
var Version = "dev"

// UserAgent identifies this program to external services.
func UserAgent() string {
	return "paparr/" + Version + " (+https://github.com/paparr/paparr)"
}
