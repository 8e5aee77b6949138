package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/musibs/quickpay/internal/pkg/pkgconfig"
	"github.com/musibs/quickpay/internal/pkg/pkglog"
	"github.com/musibs/quickpay/internal/pkg/pkgmask"
	"github.com/musibs/quickpay/internal/pkg/pkgrouter"
	"github.com/musibs/quickpay/internal/pkg/pkgroutine"
	"github.com/musibs/quickpay/internal/pkg/pkgtxid"
	"github.com/musibs/quickpay/internal/pkg/pkguid"
)

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		// Boot anyway: locked logging values and component defaults still
		// apply without a file.
		slog.Warn("failed to load config file, using defaults", "path", path, "error", err)
		cfg = pkgconfig.NewFallback()
	}

	a.locked = cfg.EnforceLoggingDefaults()

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	a.config = cfg
	a.vcfg = cfg
}

func (a *App) initLogging() {
	a.masker = pkgmask.New(a.locked.MaskingEnabled, a.config.GetArray("quickpay.logging.sensitive-fields"))

	pkglog.InitLogging(pkglog.Options{
		Level: parseLevel(a.config.GetString("quickpay.logging.level")),
		Service: pkglog.ServiceInfo{
			Name:        a.locked.ServiceName,
			Version:     a.locked.ServiceVersion,
			Environment: a.locked.ServiceEnvironment,
		},
		Masker: a.masker,
	})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.txid = pkgtxid.New()
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init snowflake generator", "error", err)
		os.Exit(1)
	}
	a.snowflake = sf
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.txid, pkgrouter.CorrelationOptions{
		Header:            a.config.GetString("quickpay.correlation.header"),
		ServiceID:         a.locked.ServiceName,
		GenerateIfMissing: a.vcfg.GetBoolOr("quickpay.correlation.generate-if-missing", true),
		AddToResponse:     a.vcfg.GetBoolOr("quickpay.correlation.add-to-response", true),
	}, a.masker)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

//nolint:unparam // is always nil
func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	a.closerFn["HTTP Server"] = func(ctx context.Context) error {
		return a.httpServer.Shutdown(ctx)
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
