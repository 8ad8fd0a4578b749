package repository

import (
	"context"
	"fmt"

	"fin-extractor/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var memberColumns = []string{"id", "user_id", "organization_id", "role", "created_at"}

type OrganizationRepository struct {
	db     DB
	logger *zap.Logger
}

func NewOrganizationRepository(db DB, logger *zap.Logger) *OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithOwner inserts org and the owner's membership atomically.
func (r *OrganizationRepository) CreateWithOwner(ctx context.Context, org *models.Organization, member *models.Member) error {
	orgSQL, orgArgs, err := squirrel.Insert("organizations").
		Columns("id", "name", "slug", "created_at").
		Values(org.ID, org.Name, org.Slug, org.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	memberSQL, memberArgs, err := squirrel.Insert("members").
		Columns(memberColumns...).
		Values(member.ID, member.UserID, member.OrganizationID, member.Role, member.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, orgSQL, orgArgs...); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	if _, err := tx.Exec(ctx, memberSQL, memberArgs...); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.Info("Organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("owner_id", member.UserID.String()),
	)
	return nil
}

// FirstMembership returns the user's oldest membership.
func (r *OrganizationRepository) FirstMembership(ctx context.Context, userID uuid.UUID) (*models.Member, error) {
	query := squirrel.Select(memberColumns...).
		From("members").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC", "id ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	return r.scanMember(ctx, query)
}

func (r *OrganizationRepository) GetMembership(ctx context.Context, userID, organizationID uuid.UUID) (*models.Member, error) {
	query := squirrel.Select(memberColumns...).
		From("members").
		Where(squirrel.Eq{"user_id": userID, "organization_id": organizationID}).
		PlaceholderFormat(squirrel.Dollar)

	return r.scanMember(ctx, query)
}

func (r *OrganizationRepository) scanMember(ctx context.Context, query squirrel.SelectBuilder) (*models.Member, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var m models.Member
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}
