package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection    = "users"
	projectsCollection = "projects"
)

var _ Store = &FirestoreStore{}

// FirestoreStore keeps profiles at users/{uid} and projects at
// users/{uid}/projects. Watch is driven by snapshot listeners.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type profileDoc struct {
	OnboardingComplete  bool      `firestore:"onboardingComplete"`
	LastActiveProjectID string    `firestore:"lastActiveProjectId,omitempty"`
	UpdatedAt           time.Time `firestore:"updatedAt"`
}

type projectDoc struct {
	Name                string    `firestore:"name"`
	Idea                string    `firestore:"idea"`
	Audience            string    `firestore:"audience"`
	Competitors         string    `firestore:"competitors"`
	ValidationScore     int       `firestore:"validationScore"`
	ExecutionConfidence int       `firestore:"executionConfidence"`
	LastUpdated         time.Time `firestore:"lastUpdated"`
}

func (r *FirestoreStore) userDoc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID)
}

func (r *FirestoreStore) projects(userID string) *firestore.CollectionRef {
	return r.userDoc(userID).Collection(projectsCollection)
}

func (r *FirestoreStore) EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	profile, err := r.GetProfile(ctx, userID)
	if !errors.Is(err, entity.ErrProfileNotFound) {
		return profile, err
	}

	doc := profileDoc{UpdatedAt: time.Now().UTC()}
	if _, err := r.userDoc(userID).Create(ctx, doc); err != nil {
		// Lost a race with another instance creating the same profile
		if status.Code(err) == codes.AlreadyExists {
			return r.GetProfile(ctx, userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return toEntityProfile(&doc), nil
}

func (r *FirestoreStore) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	snap, err := r.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, entity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return toEntityProfile(&doc), nil
}

func (r *FirestoreStore) MarkOnboardingComplete(ctx context.Context, userID, projectID string) error {
	_, err := r.userDoc(userID).Set(ctx, map[string]any{
		"onboardingComplete":  true,
		"lastActiveProjectId": projectID,
		"updatedAt":           time.Now().UTC(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("mark onboarding complete: %w", err)
	}
	return nil
}

func (r *FirestoreStore) CreateProject(ctx context.Context, userID string, project entity.Project) (*entity.Project, error) {
	ref := r.projects(userID).NewDoc()
	if project.ID != "" {
		ref = r.projects(userID).Doc(project.ID)
	}
	if project.LastUpdated.IsZero() {
		project.LastUpdated = time.Now().UTC()
	}

	if _, err := ref.Create(ctx, toProjectDoc(&project)); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	project.ID = ref.ID
	return &project, nil
}

func (r *FirestoreStore) GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error) {
	snap, err := r.projects(userID).Doc(projectID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, entity.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return decodeProject(snap)
}

func (r *FirestoreStore) ListProjects(ctx context.Context, userID string) ([]*entity.Project, error) {
	iter := r.projects(userID).OrderBy("lastUpdated", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	projects := make([]*entity.Project, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}

		project, err := decodeProject(snap)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// Watch merges the profile document listener with the project query listener.
// A snapshot is emitted once both have reported. A listener failure closes
// the returned channel.
func (r *FirestoreStore) Watch(ctx context.Context, userID string) (<-chan entity.StoreSnapshot, error) {
	if _, err := r.EnsureProfile(ctx, userID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	profiles := make(chan *entity.UserProfile)
	projects := make(chan []*entity.Project)

	go r.watchProfile(ctx, cancel, userID, profiles)
	go r.watchProjects(ctx, cancel, userID, projects)

	out := make(chan entity.StoreSnapshot, 1)
	go func() {
		defer close(out)
		defer cancel()

		var (
			snap                      entity.StoreSnapshot
			haveProfile, haveProjects bool
		)
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-profiles:
				snap.Profile = p
				haveProfile = true
			case ps := <-projects:
				snap.Projects = ps
				haveProjects = true
			}

			if !haveProfile || !haveProjects {
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (r *FirestoreStore) watchProfile(ctx context.Context, cancel context.CancelFunc, userID string, out chan<- *entity.UserProfile) {
	defer cancel()

	iter := r.userDoc(userID).Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			logListenerError(ctx, "profile", err)
			return
		}

		profile := &entity.UserProfile{}
		if snap.Exists() {
			var doc profileDoc
			if err := snap.DataTo(&doc); err != nil {
				ctxzap.Error(ctx, "decode profile snapshot", zap.Error(err))
				return
			}
			profile = toEntityProfile(&doc)
		}

		select {
		case out <- profile:
		case <-ctx.Done():
			return
		}
	}
}

func (r *FirestoreStore) watchProjects(ctx context.Context, cancel context.CancelFunc, userID string, out chan<- []*entity.Project) {
	defer cancel()

	iter := r.projects(userID).OrderBy("lastUpdated", firestore.Desc).Snapshots(ctx)
	defer iter.Stop()

	for {
		qs, err := iter.Next()
		if err != nil {
			logListenerError(ctx, "projects", err)
			return
		}

		docs, err := qs.Documents.GetAll()
		if err != nil {
			ctxzap.Error(ctx, "read projects snapshot", zap.Error(err))
			return
		}

		projects := make([]*entity.Project, 0, len(docs))
		for _, doc := range docs {
			project, err := decodeProject(doc)
			if err != nil {
				ctxzap.Error(ctx, "decode project snapshot", zap.Error(err))
				return
			}
			projects = append(projects, project)
		}

		select {
		case out <- projects:
		case <-ctx.Done():
			return
		}
	}
}

func (r *FirestoreStore) Ping(ctx context.Context) error {
	iter := r.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("ping firestore: %w", err)
	}
	return nil
}

func (r *FirestoreStore) Close() error {
	return r.client.Close()
}

func logListenerError(ctx context.Context, listener string, err error) {
	if ctx.Err() != nil || status.Code(err) == codes.Canceled {
		return
	}
	ctxzap.Error(ctx, "firestore listener failed", zap.String("listener", listener), zap.Error(err))
}

func toEntityProfile(doc *profileDoc) *entity.UserProfile {
	return &entity.UserProfile{
		OnboardingComplete:  doc.OnboardingComplete,
		LastActiveProjectID: doc.LastActiveProjectID,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func toProjectDoc(p *entity.Project) projectDoc {
	return projectDoc{
		Name:                p.Name,
		Idea:                p.Idea,
		Audience:            p.Audience,
		Competitors:         p.Competitors,
		ValidationScore:     p.ValidationScore,
		ExecutionConfidence: p.ExecutionConfidence,
		LastUpdated:         p.LastUpdated,
	}
}

func decodeProject(snap *firestore.DocumentSnapshot) (*entity.Project, error) {
	var doc projectDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", snap.Ref.ID, err)
	}

	return &entity.Project{
		ID:                  snap.Ref.ID,
		Name:                doc.Name,
		Idea:                doc.Idea,
		Audience:            doc.Audience,
		Competitors:         doc.Competitors,
		ValidationScore:     doc.ValidationScore,
		ExecutionConfidence: doc.ExecutionConfidence,
		LastUpdated:         doc.LastUpdated,
	}, nil
}
