// Package cmd implements the stackinfo command line.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/stackinfo/internal/observability"
)

// BinaryName is the executable name used in help text and log names.
const BinaryName = "stackinfo"

// VersionInfo describes the build.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var versionInfo = VersionInfo{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata injected via ldflags.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   BinaryName,
		Short: "Record the lab bucket name as stack-info.json",
		Long: `Find the S3 bucket whose name contains "glue-labs" and record it.

The bucket list is fetched once using the AWS SDK default credential chain.
The first matching bucket, in the order S3 returns them, is written to
stack-info.json in the current directory as {"S3Bucket": "<name>"} and the
same JSON is printed to stdout.

Examples:
  stackinfo
  stackinfo --match data-lake --output lake.json
  stackinfo --match 'glue-labs-*' --match-mode glob
  stackinfo --endpoint http://localhost:5555 --region us-east-1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDiscover,
	}

	f := root.Flags()
	f.String("config", "", "Config file (yaml, json, or toml)")
	f.String("match", "", `Bucket name pattern (default "glue-labs")`)
	f.String("match-mode", "", `Pattern mode: contains or glob (default "contains")`)
	f.StringP("output", "o", "", `Output file (default "stack-info.json")`)
	f.StringP("region", "r", "", "AWS region")
	f.StringP("profile", "p", "", "AWS profile")
	f.String("endpoint", "", "Custom S3 endpoint")
	f.String("log-level", "", `Log level for stderr (default "warn")`)

	root.AddCommand(newVersionCmd(), newDoctorCmd())

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	os.Exit(run(context.Background(), rootCmd))
}

func run(ctx context.Context, root *cobra.Command) int {
	observability.InitCLILogger(BinaryName, false)
	defer func() { _ = observability.CLILogger.Sync() }()

	if err := root.ExecuteContext(ctx); err != nil {
		code := 1
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		observability.CLILogger.Error("stackinfo failed", zap.Int("exit_code", code), zap.Error(err))
		return code
	}
	return 0
}
