package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"go.uber.org/zap"
)

var _ Store = &PostgresStore{}

// PostgresStore implements Store using PostgreSQL. Writes are announced on
// the notifier so that Watch can follow them.
type PostgresStore struct {
	db       *pgxpool.Pool
	notifier pubsub.Notifier
}

func NewPostgresStore(db *pgxpool.Pool, notifier pubsub.Notifier) *PostgresStore {
	return &PostgresStore{
		db:       db,
		notifier: notifier,
	}
}

func (r *PostgresStore) EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_profiles (user_id, created_at, updated_at) VALUES ($1, $2, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	return r.GetProfile(ctx, userID)
}

func (r *PostgresStore) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	var (
		profile       entity.UserProfile
		lastProjectID *string
	)
	err := r.db.QueryRow(ctx,
		`SELECT onboarding_complete, last_active_project_id, updated_at FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&profile.OnboardingComplete, &lastProjectID, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if lastProjectID != nil {
		profile.LastActiveProjectID = *lastProjectID
	}

	return &profile, nil
}

func (r *PostgresStore) MarkOnboardingComplete(ctx context.Context, userID, projectID string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_profiles (user_id, onboarding_complete, last_active_project_id, created_at, updated_at)
		 VALUES ($1, TRUE, $2, $3, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET onboarding_complete = TRUE,
		     last_active_project_id = EXCLUDED.last_active_project_id,
		     updated_at = EXCLUDED.updated_at`,
		userID, projectID, now,
	)
	if err != nil {
		return fmt.Errorf("mark onboarding complete: %w", err)
	}

	r.publish(ctx, userID)
	return nil
}

func (r *PostgresStore) CreateProject(ctx context.Context, userID string, project entity.Project) (*entity.Project, error) {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.LastUpdated.IsZero() {
		project.LastUpdated = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, user_id, name, idea, audience, competitors, validation_score, execution_confidence, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		project.ID, userID, project.Name, project.Idea, project.Audience, project.Competitors,
		project.ValidationScore, project.ExecutionConfidence, project.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	r.publish(ctx, userID)
	return &project, nil
}

func (r *PostgresStore) GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, idea, audience, competitors, validation_score, execution_confidence, last_updated
		 FROM projects WHERE user_id = $1 AND id = $2`,
		userID, projectID,
	)

	project, err := scanPgProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return project, nil
}

func (r *PostgresStore) ListProjects(ctx context.Context, userID string) ([]*entity.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, idea, audience, competitors, validation_score, execution_confidence, last_updated
		 FROM projects WHERE user_id = $1 ORDER BY last_updated DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*entity.Project, 0)
	for rows.Next() {
		project, err := scanPgProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return projects, nil
}

func (r *PostgresStore) Watch(ctx context.Context, userID string) (<-chan entity.StoreSnapshot, error) {
	return watchNotified(ctx, r.notifier, userID, loadSnapshot(r))
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close leaves the pool open; it is owned by the builder.
func (r *PostgresStore) Close() error {
	return nil
}

func (r *PostgresStore) publish(ctx context.Context, userID string) {
	if err := r.notifier.Publish(ctx, userID); err != nil {
		ctxzap.Warn(ctx, "publish store change", zap.Error(err))
	}
}

func scanPgProject(row pgx.Row) (*entity.Project, error) {
	var p entity.Project
	if err := row.Scan(
		&p.ID, &p.Name, &p.Idea, &p.Audience, &p.Competitors,
		&p.ValidationScore, &p.ExecutionConfidence, &p.LastUpdated,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
