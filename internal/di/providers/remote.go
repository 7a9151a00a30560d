package providers

import (
	"github.com/samber/do/v2"

	"github.com/Ishan-Karpe/ShelfSense/internal/config"
	"github.com/Ishan-Karpe/ShelfSense/internal/logger"
	"github.com/Ishan-Karpe/ShelfSense/internal/remote"
)

// ProvideAdminClient provides the privileged backend client. It carries
// the service-role key, so it lives only in this process.
func ProvideAdminClient(i do.Injector) (*remote.AdminClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return remote.NewAdminClient(cfg.Remote.URL, cfg.Remote.ServiceRoleKey, log.Logger), nil
}
