package app

import (
	"context"
	"net/http"

	"github.com/musibs/quickpay/internal/pkg/pkgconfig"
	"github.com/musibs/quickpay/internal/pkg/pkgmask"
	"github.com/musibs/quickpay/internal/pkg/pkgrouter"
	"github.com/musibs/quickpay/internal/pkg/pkgroutine"
	"github.com/musibs/quickpay/internal/pkg/pkgtxid"
	"github.com/musibs/quickpay/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config
	vcfg   *pkgconfig.Viper
	locked pkgconfig.LockedSettings

	// libraries
	masker    *pkgmask.Engine
	txid      *pkgtxid.Generator
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	goroutine *pkgroutine.Manager

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	//
	closerFn map[string]func(context.Context) error
}

func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLogging()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
