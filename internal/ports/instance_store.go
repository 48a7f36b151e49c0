package ports

import (
	"context"

	"hhc-instance-service/internal/domain"
)

// Port: a boundary for persisting assembled instances. Save returns the
// paths of every file it wrote.
type InstanceStore interface {
	Save(ctx context.Context, inst *domain.Instance) ([]string, error)
}
