package registry

import (
	"log/slog"

	"github.com/dukex/dealflow/pkg/actions/assignuser"
	"github.com/dukex/dealflow/pkg/actions/createtask"
	"github.com/dukex/dealflow/pkg/actions/sendemail"
	"github.com/dukex/dealflow/pkg/actions/sendnotification"
	"github.com/dukex/dealflow/pkg/actions/updatefield"
	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/jonboulle/clockwork"
)

// RegisterDefaults registers the five built-in actions backed by store.
func RegisterDefaults(registry *Registry, store persistence.Persistence, clock clockwork.Clock) {
	registry.RegisterAction(createtask.NewActionFactory(store.Tasks(), clock))
	registry.RegisterAction(sendnotification.NewActionFactory(store.Notifications()))
	registry.RegisterAction(assignuser.NewActionFactory(store.Deals(), store.Users(), store.Cursors()))
	registry.RegisterAction(updatefield.NewActionFactory(store.Deals()))
	registry.RegisterAction(sendemail.NewActionFactory())
}

// NewDefaultRegistry returns a registry with the built-in actions.
func NewDefaultRegistry(logger *slog.Logger, store persistence.Persistence, clock clockwork.Clock) *Registry {
	registry := NewRegistry(logger)
	RegisterDefaults(registry, store, clock)

	return registry
}
