package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/stackinfo/internal/observability"
)

// loadAWSConfig is replaced in tests.
var loadAWSConfig = func(ctx context.Context, profile string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

func newDoctorCmd() *cobra.Command {
	doctor := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks",
		Long: `Check that a discovery run can succeed without calling S3.

Verifies AWS credential resolution and that the output directory is
writable. Results are logged to stderr.

Examples:
  stackinfo doctor
  stackinfo doctor --profile lab`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
	doctor.Flags().StringP("profile", "p", "", "AWS profile")
	doctor.Flags().StringP("output", "o", "stack-info.json", "Output file to check")
	return doctor
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	// The checks are the command's output, so info must be visible.
	if err := observability.SetLevel("info"); err != nil {
		return err
	}
	log := observability.CLILogger
	profile, _ := cmd.Flags().GetString("profile")
	outPath, _ := cmd.Flags().GetString("output")

	log.Info(fmt.Sprintf("=== %s doctor ===", BinaryName))

	allChecks := true
	totalChecks := 3

	log.Info(fmt.Sprintf("[1/%d] Checking environment... ✅ %s/%s %s", totalChecks, runtime.GOOS, runtime.GOARCH, runtime.Version()),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))

	if !checkCredentials(cmd.Context(), log, profile, totalChecks) {
		allChecks = false
	}

	dir := filepath.Dir(outPath)
	if err := checkWritable(dir); err != nil {
		log.Error(fmt.Sprintf("[3/%d] Checking output directory... ❌ %s", totalChecks, dir), zap.Error(err))
		allChecks = false
	} else {
		log.Info(fmt.Sprintf("[3/%d] Checking output directory... ✅ %s", totalChecks, dir))
	}

	if !allChecks {
		log.Warn("⚠️  Some checks failed. Review the output above for details.")
		return exitError(1, "Diagnostics failed", nil)
	}
	log.Info("✅ All checks passed!")
	return nil
}

func checkCredentials(ctx context.Context, log *zap.Logger, profile string, totalChecks int) bool {
	cfg, err := loadAWSConfig(ctx, profile)
	if err != nil {
		log.Error(fmt.Sprintf("[2/%d] Checking AWS credentials... ❌ Cannot load AWS config", totalChecks), zap.Error(err))
		printAWSCredentialsHelp(log)
		return false
	}
	if cfg.Credentials == nil {
		log.Error(fmt.Sprintf("[2/%d] Checking AWS credentials... ❌ No credential provider", totalChecks))
		printAWSCredentialsHelp(log)
		return false
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		log.Error(fmt.Sprintf("[2/%d] Checking AWS credentials... ❌ Cannot retrieve credentials", totalChecks), zap.Error(err))
		printAWSCredentialsHelp(log)
		return false
	}

	source := creds.Source
	if source == "" {
		source = "unknown"
	}
	log.Info(fmt.Sprintf("[2/%d] Checking AWS credentials... ✅ Found credentials", totalChecks),
		zap.String("access_key", maskAccessKey(creds.AccessKeyID)),
		zap.String("source", source),
		zap.String("region", cfg.Region))
	return true
}

// checkWritable creates and removes a probe file in dir.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".stackinfo-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// maskAccessKey masks all but the last 4 characters of an access key.
func maskAccessKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// printAWSCredentialsHelp prints help for configuring AWS credentials.
func printAWSCredentialsHelp(log *zap.Logger) {
	log.Info("To configure AWS credentials:")
	log.Info("  1. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables, or")
	log.Info("  2. Run 'aws configure' to set up a profile, or")
	log.Info("  3. Use IAM role when running on AWS infrastructure")
	log.Info("For S3-compatible storage (MinIO, moto, etc.), also pass --endpoint to stackinfo.")
}
