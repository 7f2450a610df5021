package handlers

import (
	"context"

	"github.com/fatflowers/pulseboard/internal/app/service/connection"
)

// TenantResolver opens an organization's database.
type TenantResolver interface {
	Resolve(ctx context.Context, orgID string) (*connection.Tenant, error)
}

var _ TenantResolver = (*connection.Service)(nil)
