package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/store"
)

// Keys names the backend slots holding each collection.
type Keys struct {
	Subjects    string
	Files       string
	Requests    string
	Users       string
	CurrentUser string
}

// DefaultKeys derives slot names from a prefix such as "it_hub_".
func DefaultKeys(prefix string) Keys {
	return Keys{
		Subjects:    prefix + "subjects",
		Files:       prefix + "files",
		Requests:    prefix + "requests",
		Users:       prefix + "users",
		CurrentUser: prefix + "current_user",
	}
}

// WriteObserver receives the latency of every slot write.
type WriteObserver interface {
	ObserveStoreWrite(key string, duration time.Duration)
}

// Snapshot is every persisted collection at one point in time. Nil slices in
// Restore mean "leave that slot alone".
type Snapshot struct {
	Subjects []models.Subject        `json:"subjects"`
	Files    []models.StudyFile      `json:"files"`
	Requests []models.SummaryRequest `json:"requests"`
	Users    []models.User           `json:"users"`
}

// CatalogStore owns the catalog collections and the session slot. Each
// operation reads whole collections, mutates them in memory and writes them
// back; a single mutex serialises operations within the process.
type CatalogStore struct {
	backend  store.Backend
	keys     Keys
	logger   *zap.Logger
	observer WriteObserver
	now      func() time.Time

	mu sync.Mutex
}

// NewCatalogStore binds a store to its backend.
func NewCatalogStore(backend store.Backend, keys Keys, logger *zap.Logger) *CatalogStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogStore{backend: backend, keys: keys, logger: logger, now: time.Now}
}

// SetObserver installs a write latency observer.
func (s *CatalogStore) SetObserver(o WriteObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// Keys returns the slot names in use.
func (s *CatalogStore) Keys() Keys {
	return s.keys
}

// EnsureInitialized seeds absent slots and never touches existing ones.
func (s *CatalogStore) EnsureInitialized(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	absent, err := s.absent(ctx, s.keys.Subjects)
	if err != nil {
		return err
	}
	if absent {
		if err := writeCollection(ctx, s, s.keys.Subjects, InitialSubjects()); err != nil {
			return err
		}
		s.logger.Info("seeded subjects", zap.String("key", s.keys.Subjects))
	}

	absent, err = s.absent(ctx, s.keys.Files)
	if err != nil {
		return err
	}
	if absent {
		if err := writeCollection(ctx, s, s.keys.Files, []models.StudyFile{}); err != nil {
			return err
		}
	}

	absent, err = s.absent(ctx, s.keys.Users)
	if err != nil {
		return err
	}
	if absent {
		if err := writeCollection(ctx, s, s.keys.Users, []models.User{DefaultAdmin(s.now())}); err != nil {
			return err
		}
		s.logger.Info("seeded default administrator", zap.String("key", s.keys.Users))
	}
	return nil
}

// ListSubjects returns every subject in insertion order.
func (s *CatalogStore) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[models.Subject](ctx, s, s.keys.Subjects)
}

// FindSubject returns the subject with id or nil.
func (s *CatalogStore) FindSubject(ctx context.Context, id string) (*models.Subject, error) {
	subjects, err := s.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range subjects {
		if subjects[i].ID == id {
			return &subjects[i], nil
		}
	}
	return nil, nil
}

// AddSubject appends a subject. The caller supplies a unique id.
func (s *CatalogStore) AddSubject(ctx context.Context, subject models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subjects, err := readCollection[models.Subject](ctx, s, s.keys.Subjects)
	if err != nil {
		return err
	}
	return writeCollection(ctx, s, s.keys.Subjects, append(subjects, subject))
}

// DeleteSubject prunes the subject's files, persists them, then removes the
// subject. The pruned files are returned so their stored bodies can be released.
func (s *CatalogStore) DeleteSubject(ctx context.Context, id string) (models.Outcome, []models.StudyFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := readCollection[models.StudyFile](ctx, s, s.keys.Files)
	if err != nil {
		return models.OutcomeNotFound, nil, err
	}
	kept := make([]models.StudyFile, 0, len(files))
	var removed []models.StudyFile
	for _, f := range files {
		if f.SubjectID == id {
			removed = append(removed, f)
			continue
		}
		kept = append(kept, f)
	}
	if err := writeCollection(ctx, s, s.keys.Files, kept); err != nil {
		return models.OutcomeNotFound, nil, err
	}

	subjects, err := readCollection[models.Subject](ctx, s, s.keys.Subjects)
	if err != nil {
		return models.OutcomeNotFound, removed, err
	}
	outcome := models.OutcomeNotFound
	remaining := make([]models.Subject, 0, len(subjects))
	for _, sub := range subjects {
		if sub.ID == id {
			outcome = models.OutcomeApplied
			continue
		}
		remaining = append(remaining, sub)
	}
	if err := writeCollection(ctx, s, s.keys.Subjects, remaining); err != nil {
		return models.OutcomeNotFound, removed, err
	}
	return outcome, removed, nil
}

// ListFiles returns all files, or only those of subjectID when it is non-empty.
func (s *CatalogStore) ListFiles(ctx context.Context, subjectID string) ([]models.StudyFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := readCollection[models.StudyFile](ctx, s, s.keys.Files)
	if err != nil || subjectID == "" {
		return files, err
	}
	filtered := make([]models.StudyFile, 0, len(files))
	for _, f := range files {
		if f.SubjectID == subjectID {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

// FindFile returns the file with id or nil.
func (s *CatalogStore) FindFile(ctx context.Context, id string) (*models.StudyFile, error) {
	files, err := s.ListFiles(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range files {
		if files[i].ID == id {
			return &files[i], nil
		}
	}
	return nil, nil
}

// AddFile appends a fully formed file record.
func (s *CatalogStore) AddFile(ctx context.Context, file models.StudyFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := readCollection[models.StudyFile](ctx, s, s.keys.Files)
	if err != nil {
		return err
	}
	return writeCollection(ctx, s, s.keys.Files, append(files, file))
}

// DeleteFile removes one file. The removed record is returned when found.
func (s *CatalogStore) DeleteFile(ctx context.Context, id string) (models.Outcome, *models.StudyFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := readCollection[models.StudyFile](ctx, s, s.keys.Files)
	if err != nil {
		return models.OutcomeNotFound, nil, err
	}
	var removed *models.StudyFile
	kept := make([]models.StudyFile, 0, len(files))
	for i := range files {
		if files[i].ID == id {
			removed = &files[i]
			continue
		}
		kept = append(kept, files[i])
	}
	if err := writeCollection(ctx, s, s.keys.Files, kept); err != nil {
		return models.OutcomeNotFound, nil, err
	}
	if removed == nil {
		return models.OutcomeNotFound, nil, nil
	}
	return models.OutcomeApplied, removed, nil
}

// IncrementDownload adds one to the file's download counter and returns the updated record.
func (s *CatalogStore) IncrementDownload(ctx context.Context, id string) (models.Outcome, *models.StudyFile, error) {
	return s.mutateFile(ctx, id, func(f *models.StudyFile) {
		f.Downloads++
	})
}

// RateFile accumulates a rating and returns the updated record. The value is not range-checked here.
func (s *CatalogStore) RateFile(ctx context.Context, id string, rating int) (models.Outcome, *models.StudyFile, error) {
	return s.mutateFile(ctx, id, func(f *models.StudyFile) {
		f.RatingSum += rating
		f.RatingCount++
	})
}

func (s *CatalogStore) mutateFile(ctx context.Context, id string, mutate func(*models.StudyFile)) (models.Outcome, *models.StudyFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := readCollection[models.StudyFile](ctx, s, s.keys.Files)
	if err != nil {
		return models.OutcomeNotFound, nil, err
	}
	for i := range files {
		if files[i].ID == id {
			mutate(&files[i])
			if err := writeCollection(ctx, s, s.keys.Files, files); err != nil {
				return models.OutcomeNotFound, nil, err
			}
			updated := files[i]
			return models.OutcomeApplied, &updated, nil
		}
	}
	return models.OutcomeNotFound, nil, nil
}

// ListUsers returns every account in insertion order.
func (s *CatalogStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[models.User](ctx, s, s.keys.Users)
}

// FindUser returns the account with id or nil.
func (s *CatalogStore) FindUser(ctx context.Context, id string) (*models.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// AddUser appends an account. Username uniqueness is the caller's job.
func (s *CatalogStore) AddUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := readCollection[models.User](ctx, s, s.keys.Users)
	if err != nil {
		return err
	}
	return writeCollection(ctx, s, s.keys.Users, append(users, user))
}

// UpdateUser replaces the account with the same id in place and refreshes the
// session slot when that account is the one logged in.
func (s *CatalogStore) UpdateUser(ctx context.Context, user models.User) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := readCollection[models.User](ctx, s, s.keys.Users)
	if err != nil {
		return models.OutcomeNotFound, err
	}
	idx := -1
	for i := range users {
		if users[i].ID == user.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.OutcomeNotFound, nil
	}
	users[idx] = user
	if err := writeCollection(ctx, s, s.keys.Users, users); err != nil {
		return models.OutcomeNotFound, err
	}

	current, err := s.currentUser(ctx)
	if err != nil {
		return models.OutcomeApplied, err
	}
	if current != nil && current.ID == user.ID {
		if err := s.login(ctx, user); err != nil {
			return models.OutcomeApplied, err
		}
	}
	return models.OutcomeApplied, nil
}

// DeleteUser removes an account unless it would leave the collection with fewer than one member.
func (s *CatalogStore) DeleteUser(ctx context.Context, id string) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := readCollection[models.User](ctx, s, s.keys.Users)
	if err != nil {
		return models.OutcomeNotFound, err
	}
	if len(users) <= 1 {
		return models.OutcomeRefused, nil
	}
	outcome := models.OutcomeNotFound
	kept := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID == id {
			outcome = models.OutcomeApplied
			continue
		}
		kept = append(kept, u)
	}
	if err := writeCollection(ctx, s, s.keys.Users, kept); err != nil {
		return models.OutcomeNotFound, err
	}
	return outcome, nil
}

// ValidateCredentials returns the first account whose username and password both match, or nil.
func (s *CatalogStore) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if credentialsMatch(users[i], username, password) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// credentialsMatch is the only place stored passwords are compared.
func credentialsMatch(u models.User, username, password string) bool {
	return u.Username == username && u.Password == password
}

// Login stores a copy of user in the session slot.
func (s *CatalogStore) Login(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx, user)
}

func (s *CatalogStore) login(ctx context.Context, user models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.write(ctx, s.keys.CurrentUser, payload)
}

// Logout clears the session slot.
func (s *CatalogStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, s.keys.CurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the session's account copy, or nil when nobody is logged in.
func (s *CatalogStore) CurrentUser(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser(ctx)
}

func (s *CatalogStore) currentUser(ctx context.Context) (*models.User, error) {
	raw, err := s.backend.Get(ctx, s.keys.CurrentUser)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var user *models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warn("discarding unreadable session", zap.Error(err))
		return nil, nil
	}
	return user, nil
}

// AddRequest appends a summary request with status pending.
func (s *CatalogStore) AddRequest(ctx context.Context, request models.SummaryRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests, err := readCollection[models.SummaryRequest](ctx, s, s.keys.Requests)
	if err != nil {
		return err
	}
	request.Status = models.RequestPending
	return writeCollection(ctx, s, s.keys.Requests, append(requests, request))
}

// ListRequests returns summary requests oldest first.
func (s *CatalogStore) ListRequests(ctx context.Context) ([]models.SummaryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readCollection[models.SummaryRequest](ctx, s, s.keys.Requests)
}

// Snapshot reads every collection under one lock.
func (s *CatalogStore) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		snap Snapshot
		err  error
	)
	if snap.Subjects, err = readCollection[models.Subject](ctx, s, s.keys.Subjects); err != nil {
		return Snapshot{}, err
	}
	if snap.Files, err = readCollection[models.StudyFile](ctx, s, s.keys.Files); err != nil {
		return Snapshot{}, err
	}
	if snap.Requests, err = readCollection[models.SummaryRequest](ctx, s, s.keys.Requests); err != nil {
		return Snapshot{}, err
	}
	if snap.Users, err = readCollection[models.User](ctx, s, s.keys.Users); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Restore overwrites the slots whose collections are non-nil in snap.
func (s *CatalogStore) Restore(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Subjects != nil {
		if err := writeCollection(ctx, s, s.keys.Subjects, snap.Subjects); err != nil {
			return err
		}
	}
	if snap.Files != nil {
		if err := writeCollection(ctx, s, s.keys.Files, snap.Files); err != nil {
			return err
		}
	}
	if snap.Requests != nil {
		if err := writeCollection(ctx, s, s.keys.Requests, snap.Requests); err != nil {
			return err
		}
	}
	if snap.Users != nil {
		if err := writeCollection(ctx, s, s.keys.Users, snap.Users); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogStore) absent(ctx context.Context, key string) (bool, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	return len(raw) == 0, nil
}

func (s *CatalogStore) write(ctx context.Context, key string, payload []byte) error {
	start := time.Now()
	err := s.backend.Set(ctx, key, payload)
	if s.observer != nil {
		s.observer.ObserveStoreWrite(key, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// readCollection decodes a slot. Missing, empty or unparsable slots read as empty.
func readCollection[T any](ctx context.Context, s *CatalogStore, key string) ([]T, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("treating unreadable collection as empty", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeCollection[T any](ctx context.Context, s *CatalogStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.write(ctx, key, payload)
}
