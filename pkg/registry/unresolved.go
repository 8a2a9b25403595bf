package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/sluice/pkg/ports"
)

// unresolved fills an arena slot whose persisted implementation is not
// available in this build. It keeps the id occupied and always fails if
// somehow dispatched.
type unresolved struct {
	name string
}

func (u unresolved) Name() string { return u.name }

func (u unresolved) Invoke(context.Context, *ports.ExecContext, json.RawMessage) error {
	return fmt.Errorf("adapter %q is not available in this build", u.name)
}
