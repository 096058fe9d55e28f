package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cityMover/internal/auth"
	"cityMover/internal/config"
	"cityMover/internal/db"
	grpcserver "cityMover/internal/grpc"
	"cityMover/internal/httpapi"
	"cityMover/internal/i18n"
	"cityMover/internal/listing"
	"cityMover/internal/logger"
	"cityMover/internal/metrics"
	"cityMover/repository"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "citymover",
		Short:         "cityMover rental housing server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "conf", "", "path to a YAML configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the gRPC health service",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print database diagnostics as JSON",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return printStatus(cmd.Context(), cmd.OutOrStdout(), cfg.Database.Path)
			},
		},
		newMigrateCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "citymover version %s\n", version)
			},
		},
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{Use: "migrate", Short: "Schema migration commands"}
	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return migrateDown(cmd.Context(), cmd.OutOrStdout(), cfg.Database.Path)
		},
	})
	return migrate
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadWithDefaults()
}

func printStatus(ctx context.Context, w io.Writer, path string) error {
	var st db.Status
	d, err := db.Open(path)
	if err != nil {
		st = db.CheckStatus(ctx, nil, path)
		st.Error = err.Error()
	} else {
		defer d.Close()
		st = db.CheckStatus(ctx, d, path)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return err
	}
	if !st.Healthy() {
		return fmt.Errorf("database unhealthy: %s", st.Error)
	}
	return nil
}

func migrateDown(ctx context.Context, w io.Writer, path string) error {
	d, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer d.Close()
	v, err := db.RollbackLast(ctx, d)
	if err != nil {
		return err
	}
	if v == 0 {
		fmt.Fprintln(w, "no migrations to roll back")
		return nil
	}
	fmt.Fprintf(w, "rolled back migration %04d\n", v)
	return nil
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lg, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)
	lg.Info("configuration loaded", zap.Stringer("config", cfg))

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			lg.Warn("close db", zap.Error(err))
		}
	}()

	sessions, err := auth.NewStore(lg, cfg.Session)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer sessions.Close()

	tr, err := i18n.New(cfg.I18n.DefaultLang)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	users := repository.NewUserRepository(d)
	cities := repository.NewCityRepository(d)
	props := repository.NewPropertyRepository(d)
	policy := listing.DefaultPolicy()
	authn := auth.NewAuthenticator(auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), sessions)
	check := func(ctx context.Context) db.Status { return db.CheckStatus(ctx, d, cfg.Database.Path) }

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Deps{
		Users:      users,
		Owner:      listing.NewOwnerService(cities, props, policy, lg),
		Seeker:     listing.NewSeekerService(cities, props, policy),
		Auth:       authn,
		Translator: tr,
		Metrics:    metrics.New(cfg.Metrics),
		Status:     check,
		Logger:     lg,
	})
	stopHTTP, err := httpapi.Start(cfg.HTTP.Address, router)
	if err != nil {
		return fmt.Errorf("start http: %w", err)
	}
	lg.Info("http server listening", zap.String("address", cfg.HTTP.Address))

	grpcSrv := grpcserver.NewServer(authn, grpcserver.NewHealthServer(check, 5*time.Second, lg))
	stopGRPC, err := grpcserver.StartGRPC(cfg.GRPC.Address, grpcSrv)
	if err != nil {
		return fmt.Errorf("start grpc: %w", err)
	}
	lg.Info("grpc server listening", zap.String("address", cfg.GRPC.Address))

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	lg.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stopHTTP(ctx); err != nil {
		lg.Warn("http shutdown", zap.Error(err))
	}
	if err := stopGRPC(ctx); err != nil {
		lg.Warn("grpc shutdown", zap.Error(err))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
