package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/3leaps/stackinfo/internal/config"
	"github.com/3leaps/stackinfo/internal/observability"
	"github.com/3leaps/stackinfo/pkg/match"
	"github.com/3leaps/stackinfo/pkg/provider"
	"github.com/3leaps/stackinfo/pkg/provider/s3"
	"github.com/3leaps/stackinfo/pkg/stackinfo"
)

// newLister builds the bucket lister. Tests replace it with a fake.
var newLister = func(ctx context.Context, cfg s3.Config) (provider.BucketLister, error) {
	return s3.New(ctx, cfg)
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"match":      "match.pattern",
	"match-mode": "match.mode",
	"output":     "output",
	"region":     "aws.region",
	"profile":    "aws.profile",
	"endpoint":   "aws.endpoint",
	"log-level":  "logging.level",
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}
	if err := observability.SetLevel(cfg.Logging.Level); err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid log level", err)
	}

	log := observability.CLILogger.With(zap.String("run_id", uuid.NewString()))

	sel, err := cfg.Selector()
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid match pattern", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	lister, err := newLister(ctx, s3.Config{
		Region:   cfg.AWS.Region,
		Profile:  cfg.AWS.Profile,
		Endpoint: cfg.AWS.Endpoint,
		// S3-compatible services (moto, MinIO, etc.) require path-style URLs.
		ForcePathStyle: cfg.AWS.ForcePathStyle || cfg.AWS.Endpoint != "",
	})
	if err != nil {
		var cfgErr *s3.ConfigError
		if errors.As(err, &cfgErr) {
			return exitError(int(foundry.ExitInvalidArgument), "Invalid S3 configuration", err)
		}
		return exitError(int(foundry.ExitExternalServiceUnavailable), "Failed to connect to storage provider", err)
	}

	log.Debug("Discovering bucket",
		zap.String("pattern", sel.Pattern()),
		zap.String("mode", string(sel.Mode())),
		zap.String("output", cfg.Output))

	started := time.Now()
	info, err := stackinfo.Run(ctx, &loggingLister{next: lister, log: log, sel: sel}, sel, cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return classify(err)
	}

	log.Debug("Wrote stack info",
		zap.String("bucket", info.S3Bucket),
		zap.String("output", cfg.Output),
		zap.Duration("elapsed", time.Since(started)))

	return nil
}

// loadConfig layers defaults, env, the optional config file, and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := config.ReadFile(v, path); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	return config.Load(v)
}

// bindFlags applies only flags the user set, so unset flags do not mask
// env or file values with empty strings.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// classify maps a failed run onto an exit code.
func classify(err error) error {
	switch {
	case errors.Is(err, match.ErrNoMatch):
		return exitError(int(foundry.ExitFileNotFound), "No matching bucket", err)
	case isProviderFault(err):
		return exitError(int(foundry.ExitExternalServiceUnavailable), "Failed to list buckets", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return exitError(int(foundry.ExitExternalServiceUnavailable), "Bucket listing interrupted", err)
	default:
		return exitError(1, "Failed to write stack info", err)
	}
}

func isProviderFault(err error) bool {
	var provErr *provider.ProviderError
	return errors.As(err, &provErr)
}

// loggingLister adds debug logging around a single listing call.
type loggingLister struct {
	next provider.BucketLister
	log  *zap.Logger
	sel  *match.Selector
}

func (l *loggingLister) ListBuckets(ctx context.Context) ([]provider.BucketSummary, error) {
	buckets, err := l.next.ListBuckets(ctx)
	if err != nil {
		l.log.Debug("Bucket listing failed",
			zap.Bool("access_denied", provider.IsAccessDenied(err)),
			zap.Bool("invalid_credentials", provider.IsInvalidCredentials(err)),
			zap.Bool("throttled", provider.IsThrottled(err)),
			zap.Bool("unavailable", provider.IsProviderUnavailable(err)),
			zap.Error(err))
		return nil, err
	}

	names := provider.Names(buckets)
	l.log.Debug("Listed buckets",
		zap.Int("count", len(names)),
		zap.Strings("matching", l.sel.Filter(names)))

	return buckets, nil
}
