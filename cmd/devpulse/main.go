package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/devpulse/pkg/aggregator"
	"github.com/umputun/devpulse/pkg/config"
	"github.com/umputun/devpulse/pkg/provider"
	"github.com/umputun/devpulse/pkg/repository"
	"github.com/umputun/devpulse/pkg/scheduler"
	"github.com/umputun/devpulse/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] can't load config: %v", err)
		os.Exit(1)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	// mask credentials in logs
	setupLog(opts.Debug, cfg.Providers.Github.Token, cfg.Providers.Qiita.Token,
		cfg.Providers.Analytics.Token, cfg.UpdateSecret)

	log.Printf("[INFO] starting devpulse version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, cfg, opts.Debug); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires the repository, providers, aggregator, scheduler and HTTP
// server, then blocks until the context is canceled
func run(ctx context.Context, cfg *config.Config, debug bool) error {
	repo, err := repository.New(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		if e := repo.Close(); e != nil {
			log.Printf("[WARN] failed to close repository: %v", e)
		}
	}()

	agg := makeAggregator(cfg)

	sched := scheduler.New(agg, repo, scheduler.Config{
		UpdateInterval: cfg.Schedule.UpdateInterval,
		KeepSnapshots:  cfg.Schedule.KeepSnapshots,
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(cfg, repo, sched, revision, debug)
	return srv.Run(ctx)
}

// makeAggregator builds the provider set from config and assembles the
// aggregation pipeline around it
func makeAggregator(cfg *config.Config) *aggregator.Aggregator {
	httpClient := provider.NewHTTPClient(cfg.Schedule.ProviderTimeout)

	params := aggregator.Params{
		Analytics: provider.NewAnalyticsClient(provider.AnalyticsConfig{
			PropertyID: cfg.Providers.Analytics.PropertyID,
			Token:      cfg.Providers.Analytics.Token,
			BaseURL:    cfg.Providers.Analytics.BaseURL,
			PageLimit:  cfg.Providers.Analytics.PageLimit,
		}, httpClient),
		Github: provider.NewGithubClient(provider.GithubConfig{
			User:     cfg.Providers.Github.User,
			Token:    cfg.Providers.Github.Token,
			APIURL:   cfg.Providers.Github.APIURL,
			PageSize: cfg.Providers.Github.PageSize,
		}, httpClient),
		Npm: provider.NewNpmClient(provider.NpmConfig{
			Packages:     cfg.Providers.Npm.PackageNames(),
			RegistryURL:  cfg.Providers.Npm.RegistryURL,
			DownloadsURL: cfg.Providers.Npm.DownloadsURL,
			SizeURL:      cfg.Providers.Npm.SizeURL,
		}, httpClient),
		Portfolio: provider.NewLaprasClient(provider.LaprasConfig{
			User:    cfg.Providers.Lapras.User,
			BaseURL: cfg.Providers.Lapras.BaseURL,
		}, httpClient),
		Zenn: provider.NewZennClient(provider.ZennConfig{
			User:    cfg.Providers.Zenn.User,
			BaseURL: cfg.Providers.Zenn.BaseURL,
		}, httpClient),
		Qiita: provider.NewQiitaClient(provider.QiitaConfig{
			User:    cfg.Providers.Qiita.User,
			Token:   cfg.Providers.Qiita.Token,
			BaseURL: cfg.Providers.Qiita.BaseURL,
			PerPage: cfg.Providers.Qiita.PerPage,
		}, httpClient),
		Timeout: cfg.Schedule.ProviderTimeout,
	}

	// blog feed is optional, enabled only when a feed URL is configured
	if cfg.Providers.Blog.FeedURL != "" {
		params.Blog = provider.NewBlogClient(provider.BlogConfig{
			FeedURL: cfg.Providers.Blog.FeedURL,
		}, httpClient)
	}

	return aggregator.New(params)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	// secrets are masked in all log output
	var nonEmpty []string
	for _, s := range secs {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) > 0 {
		logOpts = append(logOpts, lgr.Secret(nonEmpty...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
