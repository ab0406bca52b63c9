package main

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hermes/internal/config"
	"github.com/vango-dev/hermes/pkg/toast"
)

const modulePath = "github.com/vango-dev/hermes"

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the build version of hermes along with the defaults it ships:
the config file it looks for, the environment prefix and the built-in
notification types.`,
		Run: func(cmd *cobra.Command, args []string) {
			v, _ := buildVersion()
			if short {
				fmt.Println(v)
				return
			}

			printBanner()
			fmt.Println()
			for _, line := range versionLines() {
				fmt.Println("  " + line)
			}
			fmt.Println()
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}

// buildVersion prefers the linker-set version and falls back to the module
// version recorded by `go install`.
func buildVersion() (v, module string) {
	v, module = version, modulePath
	bi, ok := rdebug.ReadBuildInfo()
	if !ok {
		return v, module
	}
	if bi.Main.Path != "" {
		module = bi.Main.Path
	}
	if v == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v = bi.Main.Version
	}
	return v, module
}

func versionLines() []string {
	v, module := buildVersion()

	types := make([]string, 0, 4)
	for typ := range toast.DefaultStyles() {
		types = append(types, typ)
	}
	sort.Strings(types)

	return []string{
		fmt.Sprintf("Version:    %s", v),
		fmt.Sprintf("Commit:     %s", commit),
		fmt.Sprintf("Built:      %s", date),
		fmt.Sprintf("Module:     %s", module),
		fmt.Sprintf("Go version: %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		fmt.Sprintf("Config:     %s (env %s*)", config.ConfigFileName, config.EnvPrefix),
		fmt.Sprintf("Types:      %s", strings.Join(types, ", ")),
	}
}
