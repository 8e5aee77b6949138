package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/musibs/quickpay/internal/payment"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.payment.enabled") {
		closer, err := payment.New(payment.Dependency{
			Config:    a.config,
			Locked:    a.locked,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			Reference: a.uuid,
			Sequence:  a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module payment", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Payment"] = closer
		}
	}
}
