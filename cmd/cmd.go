// Package cmd implements the imagewrapper command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/imagewrapper/api"
	"github.com/7blacky7/imagewrapper/envconfig"
	"github.com/7blacky7/imagewrapper/logutil"
	"github.com/7blacky7/imagewrapper/version"
)

// appendEnvDocs lists envs below the command's usage.
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-26s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI returns the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "imagewrapper",
		Short:         "Detect, inspect and convert images",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel()))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	detectCmd := newDetectCmd()
	infoCmd := newInfoCmd()
	convertCmd := newConvertCmd()
	formatsCmd := newFormatsCmd()
	benchCmd := newBenchCmd()
	serveCmd := newServeCmd()

	envVars := envconfig.AsMap()
	for _, cmd := range []*cobra.Command{detectCmd, infoCmd, convertCmd, benchCmd, serveCmd} {
		switch cmd {
		case detectCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["IMAGEWRAPPER_DEBUG"]})
		case infoCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["IMAGEWRAPPER_DEBUG"],
				envVars["IMAGEWRAPPER_MAX_PIXELS"],
			})
		case convertCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["IMAGEWRAPPER_DEBUG"],
				envVars["IMAGEWRAPPER_MAX_PIXELS"],
				envVars["IMAGEWRAPPER_NUM_WORKERS"],
				envVars["IMAGEWRAPPER_JPEG_QUALITY"],
				envVars["IMAGEWRAPPER_WEBP_QUALITY"],
				envVars["IMAGEWRAPPER_OUTPUT_DIR"],
				envVars["IMAGEWRAPPER_OVERWRITE"],
			})
		case benchCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["IMAGEWRAPPER_DEBUG"]})
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["IMAGEWRAPPER_DEBUG"],
				envVars["IMAGEWRAPPER_HOST"],
				envVars["IMAGEWRAPPER_ORIGINS"],
				envVars["IMAGEWRAPPER_MAX_PIXELS"],
				envVars["IMAGEWRAPPER_MAX_UPLOAD"],
				envVars["IMAGEWRAPPER_JPEG_QUALITY"],
				envVars["IMAGEWRAPPER_WEBP_QUALITY"],
			})
		}
	}

	rootCmd.AddCommand(
		detectCmd,
		infoCmd,
		convertCmd,
		formatsCmd,
		benchCmd,
		serveCmd,
	)

	return rootCmd
}

// versionHandler prints the version and warns when a running server reports
// a different one.
func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "imagewrapper version is %s\n", version.Version)

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Second)
	defer cancel()
	serverVersion, err := client.Version(ctx)
	if err != nil {
		return
	}
	if serverVersion != version.Version {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server version is %s\n", serverVersion)
	}
}
