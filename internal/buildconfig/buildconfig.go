// Package buildconfig exposes version identifiers stamped at build
// time via -ldflags:
//
//	-X github.com/agora-arena/agora/internal/buildconfig.version=v1.2.3
//	-X github.com/agora-arena/agora/internal/buildconfig.commit=abc1234
package buildconfig

var (
	version = "dev"
	commit  = "unknown"
)

func Version() string { return version }
func Commit() string  { return commit }

// VersionInfo is the payload served by the /version endpoint.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": version,
		"commit":  commit,
	}
}
