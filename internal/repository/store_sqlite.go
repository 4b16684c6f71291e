package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var _ Store = &SQLiteStore{}

// SQLiteStore implements Store on an embedded SQLite file. Timestamps are
// kept as unix nanoseconds.
type SQLiteStore struct {
	db       *sql.DB
	notifier pubsub.Notifier
}

// OpenSQLite opens path and applies migrations. A single connection is used
// so that writers never see SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if err := RunSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func NewSQLiteStore(db *sql.DB, notifier pubsub.Notifier) *SQLiteStore {
	return &SQLiteStore{
		db:       db,
		notifier: notifier,
	}
}

func (r *SQLiteStore) EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	now := time.Now().UTC().UnixNano()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	return r.GetProfile(ctx, userID)
}

func (r *SQLiteStore) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	var (
		profile       entity.UserProfile
		lastProjectID sql.NullString
		updatedAt     int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT onboarding_complete, last_active_project_id, updated_at FROM user_profiles WHERE user_id = ?`,
		userID,
	).Scan(&profile.OnboardingComplete, &lastProjectID, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if lastProjectID.Valid {
		profile.LastActiveProjectID = lastProjectID.String
	}
	profile.UpdatedAt = time.Unix(0, updatedAt).UTC()

	return &profile, nil
}

func (r *SQLiteStore) MarkOnboardingComplete(ctx context.Context, userID, projectID string) error {
	now := time.Now().UTC().UnixNano()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, onboarding_complete, last_active_project_id, created_at, updated_at)
		 VALUES (?, 1, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE
		 SET onboarding_complete = 1,
		     last_active_project_id = excluded.last_active_project_id,
		     updated_at = excluded.updated_at`,
		userID, projectID, now, now,
	)
	if err != nil {
		return fmt.Errorf("mark onboarding complete: %w", err)
	}

	r.publish(ctx, userID)
	return nil
}

func (r *SQLiteStore) CreateProject(ctx context.Context, userID string, project entity.Project) (*entity.Project, error) {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.LastUpdated.IsZero() {
		project.LastUpdated = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, idea, audience, competitors, validation_score, execution_confidence, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, userID, project.Name, project.Idea, project.Audience, project.Competitors,
		project.ValidationScore, project.ExecutionConfidence, project.LastUpdated.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	r.publish(ctx, userID)
	return &project, nil
}

func (r *SQLiteStore) GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, idea, audience, competitors, validation_score, execution_confidence, last_updated
		 FROM projects WHERE user_id = ? AND id = ?`,
		userID, projectID,
	)

	project, err := scanSQLiteProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return project, nil
}

func (r *SQLiteStore) ListProjects(ctx context.Context, userID string) ([]*entity.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, idea, audience, competitors, validation_score, execution_confidence, last_updated
		 FROM projects WHERE user_id = ? ORDER BY last_updated DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*entity.Project, 0)
	for rows.Next() {
		project, err := scanSQLiteProject(rows)
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

func (r *SQLiteStore) Watch(ctx context.Context, userID string) (<-chan entity.StoreSnapshot, error) {
	return watchNotified(ctx, r.notifier, userID, loadSnapshot(r))
}

func (r *SQLiteStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteStore) Close() error {
	return r.db.Close()
}

func (r *SQLiteStore) publish(ctx context.Context, userID string) {
	if err := r.notifier.Publish(ctx, userID); err != nil {
		ctxzap.Warn(ctx, "publish store change", zap.Error(err))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProject(row rowScanner) (*entity.Project, error) {
	var (
		p           entity.Project
		lastUpdated int64
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Idea, &p.Audience, &p.Competitors,
		&p.ValidationScore, &p.ExecutionConfidence, &lastUpdated,
	); err != nil {
		return nil, err
	}
	p.LastUpdated = time.Unix(0, lastUpdated).UTC()
	return &p, nil
}
