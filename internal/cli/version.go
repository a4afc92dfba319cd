package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/sld/internal/buildinfo"
	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/ui"
)

const modulePath = "github.com/aidanlsb/sld"

type versionInfo struct {
	Version      string `json:"version"`
	ModulePath   string `json:"module_path"`
	Commit       string `json:"commit,omitempty"`
	CommitTime   string `json:"commit_time,omitempty"`
	Modified     bool   `json:"modified"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	IndexVersion int    `json:"index_version"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sld version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Println(ui.Bold.Render("sld " + info.Version))
		rows := [][2]string{
			{"module", info.ModulePath},
			{"commit", info.Commit},
			{"built", info.CommitTime},
			{"go", info.GoVersion},
			{"platform", info.Platform},
			{"index", fmt.Sprintf("v%d", info.IndexVersion)},
		}
		for _, r := range rows {
			if r[1] == "" {
				continue
			}
			fmt.Printf("  %s %s\n", ui.Muted.Render(fmt.Sprintf("%-9s", r[0])), r[1])
		}
		if info.Modified {
			fmt.Println(ui.Warning("built from a modified working tree"))
		}
		return nil
	},
}

// currentVersionInfo prefers the module build info and falls back to the
// values stamped into buildinfo with -ldflags.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:      "devel",
		ModulePath:   modulePath,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		IndexVersion: index.CurrentDBVersion,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		settings := make(map[string]string, len(bi.Settings))
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}
		if bi.Main.Path != "" {
			info.ModulePath = bi.Main.Path
		}
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		if settings["GOOS"] != "" && settings["GOARCH"] != "" {
			info.Platform = settings["GOOS"] + "/" + settings["GOARCH"]
		}
		info.Commit = settings["vcs.revision"]
		info.CommitTime = settings["vcs.time"]
		info.Modified = strings.EqualFold(settings["vcs.modified"], "true")
	}

	if info.Version == "devel" && buildinfo.Version != "" && buildinfo.Version != "(devel)" {
		info.Version = buildinfo.Version
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}
	return info
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
