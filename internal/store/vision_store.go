package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/civiz/civiz/internal/domain"
	"github.com/civiz/civiz/internal/logger"
	"github.com/civiz/civiz/internal/service"
	"github.com/google/uuid"
)

// ViewMode selects whose visions ranked queries prefer.
type ViewMode string

const (
	ViewModeMine ViewMode = "mine"
	ViewModeCity ViewMode = "city"
)

// defaultPlaceholders are the stand-in images shown while generation is
// pending (and kept if it fails).
var defaultPlaceholders = []string{
	"https://images.unsplash.com/photo-1449034446853-66c86144b0ad?w=800&q=80",
	"https://images.unsplash.com/photo-1470071459604-3b5ec3a7fe05?w=800&q=80",
	"https://images.unsplash.com/photo-1447752875215-b2761acb3c5d?w=800&q=80",
	"https://images.unsplash.com/photo-1433086966358-54859d0ed716?w=800&q=80",
	"https://images.unsplash.com/photo-1501594907352-04cda38ebc29?w=800&q=80",
	"https://images.unsplash.com/photo-1540202404-1b927e27fa8b?w=800&q=80",
}

// Config holds configuration for the vision store.
type Config struct {
	CurrentUserID  string
	StartingPoints int
	SeedSamples    bool
	Placeholders   []string
}

// VisionStore owns the vision collection and the point ledger. It is the
// single writer for both: every mutation goes through Submit, Like,
// SetViewMode, ToggleViewMode, or Reset, and each mutation is atomic under
// one mutex. The only suspending operation is the gateway call inside
// Submit, which runs outside the lock so likes, reads, and further
// submissions interleave freely against a consistent collection.
type VisionStore struct {
	mu             sync.Mutex
	visions        []*domain.Vision // newest first
	ledger         domain.Ledger
	viewMode       ViewMode
	placeholderIdx int

	currentUser    string
	startingPoints int
	placeholders   []string

	classifier *service.Classifier
	gateway    service.GenerationGateway

	subs      map[uint64]chan Event
	nextSubID uint64
}

// New creates a vision store.
// Parameters:
//   - classifier: category classifier for submissions.
//   - gateway: image generation gateway invoked during Submit.
//   - cfg: store configuration; nil uses defaults (user-1, starting points
//     from the ledger rules, no seed data).
// Returns:
//   - *VisionStore: initialized store in mine view mode.
func New(classifier *service.Classifier, gateway service.GenerationGateway, cfg *Config) *VisionStore {
	if cfg == nil {
		cfg = &Config{}
	}
	currentUser := cfg.CurrentUserID
	if currentUser == "" {
		currentUser = "user-1"
	}
	starting := cfg.StartingPoints
	if starting == 0 {
		starting = domain.StartingPoints
	}
	placeholders := cfg.Placeholders
	if len(placeholders) == 0 {
		placeholders = defaultPlaceholders
	}

	s := &VisionStore{
		ledger:         domain.Ledger(starting),
		viewMode:       ViewModeMine,
		currentUser:    currentUser,
		startingPoints: starting,
		placeholders:   placeholders,
		classifier:     classifier,
		gateway:        gateway,
		subs:           make(map[uint64]chan Event),
	}

	if cfg.SeedSamples {
		s.seed()
	}
	return s
}

// CurrentUser returns the acting user's identifier.
// Parameters: none.
// Returns:
//   - string: current user ID.
func (s *VisionStore) CurrentUser() string {
	return s.currentUser
}

// Submit classifies the vision text, inserts a provisional pending record
// that is immediately visible to readers, then drives the asynchronous
// generation workflow to completion.
//
// The submission award is applied to both the new vision and the ledger in
// the same atomic step as the insert. The gateway call happens outside the
// lock; its outcome is reconciled strictly by vision ID so concurrent
// inserts and likes can never misdirect the update. On failure the vision
// ends in the failed state, keeps its placeholder image and its award, and
// the error is returned to the caller.
//
// Parameters:
//   - ctx: context for the gateway call.
//   - text: vision text; the caller has already validated length bounds.
//   - address: street address; also caller-validated.
// Returns:
//   - *domain.Vision: snapshot of the record after reconciliation (nil if
//     the store was reset while generation was in flight).
//   - error: the gateway failure, if any.
func (s *VisionStore) Submit(ctx context.Context, text, address string) (*domain.Vision, error) {
	category := s.classifier.Classify(text)

	v := &domain.Vision{
		ID:        uuid.New().String(),
		Text:      text,
		Address:   address,
		Category:  category,
		OwnerID:   s.currentUser,
		Points:    domain.PointsVisionSubmission,
		LikedBy:   []string{},
		CreatedAt: time.Now(),
		Status:    domain.GenerationPending,
	}

	s.mu.Lock()
	v.ImageURL = s.placeholders[s.placeholderIdx%len(s.placeholders)]
	s.placeholderIdx++
	s.visions = append([]*domain.Vision{v}, s.visions...)
	s.ledger = s.ledger.ApplySubmission()
	snapshot := v.Clone()
	s.mu.Unlock()

	s.notify(EventVisionSubmitted, snapshot)

	logger.CtxInfo(ctx, "Vision submitted: id=%s, category=%s", v.ID, category)

	imageRef, err := s.gateway.Generate(ctx, address, text)
	if err != nil {
		failed := s.reconcile(v.ID, func(rec *domain.Vision) {
			rec.Status = domain.GenerationFailed
		})
		s.notify(EventVisionFailed, failed)
		logger.CtxWarn(ctx, "Vision generation failed: id=%s, reason=%s", v.ID, service.ReasonOf(err))
		return failed, err
	}

	ready := s.reconcile(v.ID, func(rec *domain.Vision) {
		rec.ImageURL = imageRef
		rec.GeneratedImageURL = imageRef
		rec.Status = domain.GenerationReady
	})
	s.notify(EventVisionReady, ready)
	if ready == nil {
		logger.CtxInfo(ctx, "Vision %s no longer present, dropping generation result", v.ID)
	}
	return ready, nil
}

// reconcile applies mutate to the vision with the given ID and returns a
// snapshot, or nil when the vision is gone (store reset mid-flight). Lookup
// is by identity, never by position: the collection may have been reordered
// or grown arbitrarily since the record was inserted.
func (s *VisionStore) reconcile(id string, mutate func(*domain.Vision)) *domain.Vision {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.visions {
		if rec.ID == id {
			mutate(rec)
			return rec.Clone()
		}
	}
	return nil
}

// Like records a like from the current user on the given vision. Unknown IDs
// and repeated likes are silent no-ops, which keeps the operation idempotent
// and safe to call speculatively. Liking one's own vision is allowed.
//
// The likedBy entry, the vision's like-received award, and the ledger's
// like-given award land in one atomic step; readers never observe one
// without the others.
//
// Parameters:
//   - visionID: ID of the vision to like.
// Returns: none.
func (s *VisionStore) Like(visionID string) {
	s.mu.Lock()
	var snapshot *domain.Vision
	for _, rec := range s.visions {
		if rec.ID != visionID {
			continue
		}
		if rec.LikedByUser(s.currentUser) {
			break
		}
		rec.LikedBy = append(rec.LikedBy, s.currentUser)
		rec.Points += domain.PointsLikeReceived
		s.ledger = s.ledger.ApplyLikeGiven()
		snapshot = rec.Clone()
		break
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.notify(EventVisionLiked, snapshot)
	}
}

// ListMine returns the current user's visions ordered by points descending.
// Ties keep the collection order, which is newest-first.
// Parameters: none.
// Returns:
//   - []*domain.Vision: cloned, ranked visions owned by the current user.
func (s *VisionStore) ListMine() []*domain.Vision {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Vision
	for _, rec := range s.visions {
		if rec.OwnerID == s.currentUser {
			out = append(out, rec.Clone())
		}
	}
	sortByPoints(out)
	return out
}

// ListCity returns all visions ordered by points descending with the same
// newest-first tie-break as ListMine.
// Parameters: none.
// Returns:
//   - []*domain.Vision: cloned, ranked visions.
func (s *VisionStore) ListCity() []*domain.Vision {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Vision, 0, len(s.visions))
	for _, rec := range s.visions {
		out = append(out, rec.Clone())
	}
	sortByPoints(out)
	return out
}

// sortByPoints stable-sorts by points descending. The input is already in
// collection order (newest first), so equal-point visions stay newest-first.
func sortByPoints(visions []*domain.Vision) {
	sort.SliceStable(visions, func(i, j int) bool {
		return visions[i].Points > visions[j].Points
	})
}

// TopByCategory returns the representative vision per funding category.
// In mine mode a category where the current user has visions is represented
// by that user's highest-point vision, even when a city vision scores
// higher; otherwise the globally highest-point vision represents the
// category. Categories with no visions are omitted.
// Parameters: none.
// Returns:
//   - map[domain.CategoryID]*domain.Vision: cloned top vision per category.
func (s *VisionStore) TopByCategory() map[domain.CategoryID]*domain.Vision {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[domain.CategoryID]*domain.Vision)
	for _, category := range domain.CategoryOrder() {
		var topMine, topAll *domain.Vision
		for _, rec := range s.visions {
			if rec.Category != category {
				continue
			}
			if topAll == nil || rec.Points > topAll.Points {
				topAll = rec
			}
			if rec.OwnerID == s.currentUser && (topMine == nil || rec.Points > topMine.Points) {
				topMine = rec
			}
		}

		pick := topAll
		if s.viewMode == ViewModeMine && topMine != nil {
			pick = topMine
		}
		if pick != nil {
			result[category] = pick.Clone()
		}
	}
	return result
}

// Points returns the current ledger total.
// Parameters: none.
// Returns:
//   - int: running point total for the current user.
func (s *VisionStore) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Total()
}

// ViewMode returns the current view mode.
func (s *VisionStore) ViewMode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// SetViewMode sets the view mode. Unknown values are ignored.
func (s *VisionStore) SetViewMode(mode ViewMode) {
	if mode != ViewModeMine && mode != ViewModeCity {
		return
	}
	s.mu.Lock()
	s.viewMode = mode
	s.mu.Unlock()
}

// ToggleViewMode flips between mine and city mode.
// Parameters: none.
// Returns:
//   - ViewMode: the mode after toggling.
func (s *VisionStore) ToggleViewMode() ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewMode == ViewModeMine {
		s.viewMode = ViewModeCity
	} else {
		s.viewMode = ViewModeMine
	}
	return s.viewMode
}

// Reset clears all visions and restores the starting ledger, beginning a
// fresh session. Generation calls still in flight reconcile against the
// emptied collection and become no-ops.
// Parameters: none.
// Returns: none.
func (s *VisionStore) Reset() {
	s.mu.Lock()
	s.visions = nil
	s.ledger = domain.Ledger(s.startingPoints)
	s.viewMode = ViewModeMine
	s.placeholderIdx = 0
	s.mu.Unlock()
}

// seed inserts the demo visions shown before the user submits anything.
// They belong to other users, already have generated imagery, and carry
// preset likes so the ranked views have content on first load.
func (s *VisionStore) seed() {
	now := time.Now()
	samples := []*domain.Vision{
		{
			ID:                "sample-1",
			Text:              "Transform Golden Gate Park into a sustainable urban farm with community gardens",
			Address:           "Golden Gate Park, San Francisco, CA",
			Category:          domain.CategoryParksRecreation,
			ImageURL:          defaultPlaceholders[0],
			GeneratedImageURL: defaultPlaceholders[0],
			OwnerID:           "user-2",
			Points:            15,
			LikedBy:           []string{"user-3", "user-4"},
			CreatedAt:         now.Add(-1 * time.Hour),
			Status:            domain.GenerationReady,
		},
		{
			ID:                "sample-2",
			Text:              "Create 24/7 youth mentorship centers with tech training and art programs",
			Address:           "16th Street, Mission District, San Francisco, CA",
			Category:          domain.CategoryYouthCenters,
			ImageURL:          defaultPlaceholders[1],
			GeneratedImageURL: defaultPlaceholders[1],
			OwnerID:           "user-3",
			Points:            12,
			LikedBy:           []string{"user-1", "user-2"},
			CreatedAt:         now.Add(-2 * time.Hour),
			Status:            domain.GenerationReady,
		},
		{
			ID:                "sample-3",
			Text:              "Build affordable micro-housing units for essential workers near transit hubs",
			Address:           "Market Street, SOMA, San Francisco, CA",
			Category:          domain.CategoryAffordableHousing,
			ImageURL:          defaultPlaceholders[2],
			GeneratedImageURL: defaultPlaceholders[2],
			OwnerID:           "user-4",
			Points:            18,
			LikedBy:           []string{"user-1", "user-2", "user-3"},
			CreatedAt:         now.Add(-3 * time.Hour),
			Status:            domain.GenerationReady,
		},
	}
	s.visions = append(s.visions, samples...)
}
