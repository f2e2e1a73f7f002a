package ports

import "github.com/aretw0/nest/pkg/domain"

// ConfigLoader resolves state trees by name.
type ConfigLoader interface {
	// Config returns the tree registered under name.
	// Returns domain.ErrConfigNotFound if there is none.
	Config(name string) (domain.StateConfig, error)

	// Names lists the registered tree names in a stable order.
	Names() []string
}
