package salesorder

import (
	"github.com/gstbill/gstbill/internal/salesorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("salesorder.service",
	fx.Provide(service.NewService),
)
