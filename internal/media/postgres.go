package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/sqlinline"
)

// DBTX is the subset of a pgx pool or connection the repository needs.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads attachment metadata from the attachments table.
type PostgresRepository struct {
	db    DBTX
	hosts []string
}

// NewPostgresRepository wraps a pgx pool or connection, treating the given
// hosts as local.
func NewPostgresRepository(db DBTX, localHosts ...string) *PostgresRepository {
	return &PostgresRepository{db: db, hosts: localHosts}
}

// DimensionsByURL looks up intrinsic dimensions by source URL.
func (r *PostgresRepository) DimensionsByURL(ctx context.Context, sourceURL string) (domain.Dimensions, error) {
	var (
		id   string
		dims domain.Dimensions
	)
	err := r.db.QueryRow(ctx, sqlinline.QSelectAttachmentByURL, sourceURL).Scan(&id, &dims.Width, &dims.Height)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Dimensions{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Dimensions{}, fmt.Errorf("attachment by url: %w", err)
	}
	return dims, nil
}

// ResolveIdentity maps a source URL onto its attachment id.
func (r *PostgresRepository) ResolveIdentity(ctx context.Context, sourceURL string) (Identity, error) {
	var (
		id   string
		w, h int
	)
	err := r.db.QueryRow(ctx, sqlinline.QSelectAttachmentByURL, sourceURL).Scan(&id, &w, &h)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("attachment by url: %w", err)
	}
	return Identity(id), nil
}

// IsLocalURL applies the shared local-URL rule over the configured hosts.
func (r *PostgresRepository) IsLocalURL(sourceURL string) bool {
	return isLocal(sourceURL, r.hosts)
}

var _ Repository = (*PostgresRepository)(nil)
