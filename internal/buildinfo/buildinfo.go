// Package buildinfo carries release metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/aidanlsb/sld/internal/buildinfo.Version=v0.1.0"
//
// All values are empty in development builds.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
