package payment

import (
	"context"
	"time"

	"github.com/musibs/quickpay/internal/payment/event"
	"github.com/musibs/quickpay/internal/payment/inbound"
	"github.com/musibs/quickpay/internal/payment/store"
	"github.com/musibs/quickpay/internal/payment/usecase"
	"github.com/musibs/quickpay/internal/pkg/pkgconfig"
	"github.com/musibs/quickpay/internal/pkg/pkgrouter"
	"github.com/musibs/quickpay/internal/pkg/pkgroutine"
	"github.com/musibs/quickpay/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Locked    pkgconfig.LockedSettings
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	Reference pkguid.StringID
	Sequence  pkguid.NumberID
}

func New(dep Dependency) (func(context.Context) error, error) {
	storage := store.NewInMemoryStore()
	bus := event.NewBus(512)
	consumer := event.NewAuditConsumer(bus, event.NewAuditLogger(dep.Locked.ServiceName), event.ConsumerConfig{
		Workers:     4,
		MaxRetries:  3,
		BaseBackoff: 200 * time.Millisecond,
	})
	consumer.Start()

	if dep.Reference == nil {
		dep.Reference = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Store:     storage,
		Events:    bus,
		Runner:    dep.Goroutine,
		Clock:     nil,
		Reference: dep.Reference,
		Sequence:  dep.Sequence,
		RootCtx:   dep.Context,
		MaxAmount: int64(dep.Config.GetInt("modules.payment.max-amount")),
		Provider:  dep.Config.GetString("modules.payment.provider"),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}
