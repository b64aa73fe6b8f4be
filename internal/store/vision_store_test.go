package store

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/civiz/civiz/internal/domain"
	"github.com/civiz/civiz/internal/service"
)

// funcGateway adapts a function into a GenerationGateway.
type funcGateway struct {
	fn func(ctx context.Context, address, prompt string) (string, error)
}

func (g *funcGateway) Generate(ctx context.Context, address, prompt string) (string, error) {
	return g.fn(ctx, address, prompt)
}

func instantGateway(ref string) *funcGateway {
	return &funcGateway{fn: func(ctx context.Context, address, prompt string) (string, error) {
		return ref, nil
	}}
}

func failingGateway(reason service.FailureReason) *funcGateway {
	return &funcGateway{fn: func(ctx context.Context, address, prompt string) (string, error) {
		return "", &service.GenerationError{Reason: reason, Message: "provider rejected"}
	}}
}

// blockingGateway signals on began when a call starts and holds the call
// until proceed is signalled. Used to interleave store operations with an
// in-flight generation.
type blockingGateway struct {
	began   chan struct{}
	proceed chan struct{}
	ref     string
	err     error
}

func newBlockingGateway(ref string, err error) *blockingGateway {
	return &blockingGateway{
		began:   make(chan struct{}, 1),
		proceed: make(chan struct{}),
		ref:     ref,
		err:     err,
	}
}

func (g *blockingGateway) Generate(ctx context.Context, address, prompt string) (string, error) {
	g.began <- struct{}{}
	<-g.proceed
	return g.ref, g.err
}

func newTestStore(gw service.GenerationGateway) *VisionStore {
	return New(service.NewClassifier(), gw, &Config{CurrentUserID: "user-1"})
}

func TestSubmitInsertsProvisionalPendingVision(t *testing.T) {
	gw := newBlockingGateway("https://img.example.com/a.png", nil)
	s := newTestStore(gw)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "build a new park with a playground", "123 Main St")
		done <- err
	}()
	<-gw.began

	// Provisional record is visible while generation is still in flight.
	mine := s.ListMine()
	if len(mine) != 1 {
		t.Fatalf("expected 1 vision, got %d", len(mine))
	}
	v := mine[0]
	if v.Status != domain.GenerationPending {
		t.Errorf("expected pending, got %s", v.Status)
	}
	if v.Category != domain.CategoryParksRecreation {
		t.Errorf("expected Parks & Recreation, got %s", v.Category)
	}
	if v.Points != domain.PointsVisionSubmission {
		t.Errorf("expected %d points, got %d", domain.PointsVisionSubmission, v.Points)
	}
	if v.ImageURL == "" || v.GeneratedImageURL != "" {
		t.Errorf("expected placeholder only, got imageURL=%q generated=%q", v.ImageURL, v.GeneratedImageURL)
	}
	if got := s.Points(); got != domain.StartingPoints+domain.PointsVisionSubmission {
		t.Errorf("expected ledger %d, got %d", domain.StartingPoints+domain.PointsVisionSubmission, got)
	}

	close(gw.proceed)
	if err := <-done; err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	mine = s.ListMine()
	if mine[0].Status != domain.GenerationReady {
		t.Errorf("expected ready, got %s", mine[0].Status)
	}
	if mine[0].ImageURL != "https://img.example.com/a.png" || mine[0].GeneratedImageURL != "https://img.example.com/a.png" {
		t.Errorf("generated image not applied: imageURL=%q generated=%q", mine[0].ImageURL, mine[0].GeneratedImageURL)
	}
}

func TestSubmitFailureKeepsPlaceholderAndAward(t *testing.T) {
	s := newTestStore(failingGateway(service.ReasonRateLimited))

	v, err := s.Submit(context.Background(), "night market for local restaurants", "5th Ave")
	if err == nil {
		t.Fatal("expected generation error")
	}
	if service.ReasonOf(err) != service.ReasonRateLimited {
		t.Errorf("expected rate_limited, got %s", service.ReasonOf(err))
	}

	if v == nil {
		t.Fatal("expected failed vision snapshot")
	}
	if v.Status != domain.GenerationFailed {
		t.Errorf("expected failed, got %s", v.Status)
	}
	if v.GeneratedImageURL != "" {
		t.Errorf("failed vision must not carry a generated image: %q", v.GeneratedImageURL)
	}
	if !strings.Contains(v.ImageURL, "unsplash.com") {
		t.Errorf("placeholder image not kept: %q", v.ImageURL)
	}

	// The submission award is never rolled back on generation failure.
	if v.Points != domain.PointsVisionSubmission {
		t.Errorf("expected %d points, got %d", domain.PointsVisionSubmission, v.Points)
	}
	if got := s.Points(); got != domain.StartingPoints+domain.PointsVisionSubmission {
		t.Errorf("expected ledger %d, got %d", domain.StartingPoints+domain.PointsVisionSubmission, got)
	}
}

func TestSubmitCollectionGrowthAndUniqueIDs(t *testing.T) {
	s := newTestStore(instantGateway("https://img.example.com/x.png"))

	const n = 20
	for i := 0; i < n; i++ {
		if _, err := s.Submit(context.Background(), fmt.Sprintf("vision number %d", i), "addr"); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	city := s.ListCity()
	if len(city) != n {
		t.Fatalf("expected %d visions, got %d", n, len(city))
	}
	seen := make(map[string]bool, n)
	for _, v := range city {
		if seen[v.ID] {
			t.Fatalf("duplicate vision ID %s", v.ID)
		}
		seen[v.ID] = true
	}
}

func TestReconcileByIdentityUnderConcurrentSubmissions(t *testing.T) {
	first := newBlockingGateway("https://img.example.com/first.png", nil)
	var calls atomic.Int32
	gw := &funcGateway{fn: func(ctx context.Context, address, prompt string) (string, error) {
		if calls.Add(1) == 1 {
			return first.Generate(ctx, address, prompt)
		}
		return "https://img.example.com/second.png", nil
	}}
	s := newTestStore(gw)

	done := make(chan struct{})
	go func() {
		s.Submit(context.Background(), "community garden", "addr one")
		close(done)
	}()
	<-first.began

	// Second submission completes while the first is still pending,
	// shifting the collection under it.
	if _, err := s.Submit(context.Background(), "bike lanes downtown", "addr two"); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	s.Like(s.ListCity()[0].ID)

	close(first.proceed)
	<-done

	var gardenVision, bikeVision *domain.Vision
	for _, v := range s.ListCity() {
		switch v.Text {
		case "community garden":
			gardenVision = v
		case "bike lanes downtown":
			bikeVision = v
		}
	}
	if gardenVision == nil || bikeVision == nil {
		t.Fatal("missing submitted visions")
	}

	if gardenVision.ImageURL != "https://img.example.com/first.png" {
		t.Errorf("first vision not reconciled by identity: %q", gardenVision.ImageURL)
	}
	if bikeVision.ImageURL != "https://img.example.com/second.png" {
		t.Errorf("second vision clobbered: %q", bikeVision.ImageURL)
	}
	if gardenVision.Status != domain.GenerationReady || bikeVision.Status != domain.GenerationReady {
		t.Errorf("unexpected states: %s / %s", gardenVision.Status, bikeVision.Status)
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	s := newTestStore(instantGateway("x"))
	v, err := s.Submit(context.Background(), "a pocket park", "addr")
	if err != nil {
		t.Fatal(err)
	}
	ledgerBefore := s.Points()

	s.Like(v.ID)
	afterFirst := s.ListCity()[0]
	if afterFirst.Points != domain.PointsVisionSubmission+domain.PointsLikeReceived {
		t.Errorf("expected %d points, got %d", domain.PointsVisionSubmission+domain.PointsLikeReceived, afterFirst.Points)
	}
	if len(afterFirst.LikedBy) != 1 || afterFirst.LikedBy[0] != "user-1" {
		t.Errorf("unexpected likedBy: %v", afterFirst.LikedBy)
	}
	if s.Points() != ledgerBefore+domain.PointsLikeGiven {
		t.Errorf("expected ledger %d, got %d", ledgerBefore+domain.PointsLikeGiven, s.Points())
	}

	// Second like from the same user changes nothing.
	s.Like(v.ID)
	afterSecond := s.ListCity()[0]
	if afterSecond.Points != afterFirst.Points {
		t.Errorf("duplicate like changed points: %d -> %d", afterFirst.Points, afterSecond.Points)
	}
	if len(afterSecond.LikedBy) != 1 {
		t.Errorf("duplicate like changed likedBy: %v", afterSecond.LikedBy)
	}
	if s.Points() != ledgerBefore+domain.PointsLikeGiven {
		t.Errorf("duplicate like changed ledger: %d", s.Points())
	}
}

func TestLikeUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(instantGateway("x"))
	before := s.Points()

	s.Like("no-such-vision")

	if s.Points() != before {
		t.Errorf("like on unknown id changed ledger: %d -> %d", before, s.Points())
	}
	if len(s.ListCity()) != 0 {
		t.Error("like on unknown id created a vision")
	}
}

// Liking your own submission is allowed; there is deliberately no ownership
// check on the like path.
func TestSelfLikeAllowed(t *testing.T) {
	s := newTestStore(instantGateway("x"))
	v, _ := s.Submit(context.Background(), "rooftop garden", "addr")

	s.Like(v.ID)
	got := s.ListCity()[0]
	if !got.LikedByUser("user-1") {
		t.Error("expected self-like to be recorded")
	}
}

func TestListOrderingStableWithNewestFirstTieBreak(t *testing.T) {
	s := newTestStore(instantGateway("x"))

	a, _ := s.Submit(context.Background(), "vision alpha", "addr")
	b, _ := s.Submit(context.Background(), "vision beta", "addr")
	c, _ := s.Submit(context.Background(), "vision gamma", "addr")

	// Give gamma a higher score; alpha and beta stay tied.
	s.Like(c.ID)

	city := s.ListCity()
	if len(city) != 3 {
		t.Fatalf("expected 3 visions, got %d", len(city))
	}
	if city[0].ID != c.ID {
		t.Errorf("highest-point vision not first: %s", city[0].Text)
	}
	// Tied visions keep collection order: most recently created first.
	if city[1].ID != b.ID || city[2].ID != a.ID {
		t.Errorf("tie-break violated: got [%s, %s]", city[1].Text, city[2].Text)
	}

	// Repeated calls with unchanged input return the same order.
	again := s.ListCity()
	for i := range city {
		if city[i].ID != again[i].ID {
			t.Fatalf("ordering unstable at index %d", i)
		}
	}
}

func TestPointsMonotonicallyNonDecreasing(t *testing.T) {
	s := newTestStore(failingGateway(service.ReasonUnknown))

	v, _ := s.Submit(context.Background(), "some plaza", "addr")
	if v.Points < domain.PointsVisionSubmission {
		t.Errorf("points below base award after failure: %d", v.Points)
	}

	s.Like(v.ID)
	got := s.ListCity()[0]
	if got.Points < v.Points {
		t.Errorf("points decreased: %d -> %d", v.Points, got.Points)
	}
}

func TestTopByCategoryOmitsEmptyCategories(t *testing.T) {
	s := newTestStore(instantGateway("x"))
	s.Submit(context.Background(), "a skate park", "addr")

	top := s.TopByCategory()
	if len(top) != 1 {
		t.Fatalf("expected 1 category, got %d", len(top))
	}
	if _, ok := top[domain.CategoryParksRecreation]; !ok {
		t.Error("expected Parks & Recreation entry")
	}
}

func TestTopByCategoryPrefersOwnVisionInMineMode(t *testing.T) {
	s := New(service.NewClassifier(), instantGateway("x"), &Config{
		CurrentUserID: "user-1",
		SeedSamples:   true, // sample-1 is a 15-point park vision owned by user-2
	})

	mine, _ := s.Submit(context.Background(), "a tiny neighborhood park", "addr")

	top := s.TopByCategory()
	got, ok := top[domain.CategoryParksRecreation]
	if !ok {
		t.Fatal("missing parks category")
	}
	if got.ID != mine.ID {
		t.Errorf("mine mode should prefer own 3-point vision over 15-point city vision, got %s", got.ID)
	}

	// City mode returns the globally highest-point vision.
	s.SetViewMode(ViewModeCity)
	top = s.TopByCategory()
	if got := top[domain.CategoryParksRecreation]; got.ID != "sample-1" {
		t.Errorf("city mode should return global top, got %s", got.ID)
	}
}

func TestTopByCategoryPicksOwnHighestPointVision(t *testing.T) {
	s := newTestStore(instantGateway("x"))

	low, _ := s.Submit(context.Background(), "park benches", "addr")
	high, _ := s.Submit(context.Background(), "park fountain", "addr")
	s.Like(high.ID)

	top := s.TopByCategory()
	got := top[domain.CategoryParksRecreation]
	if got.ID != high.ID {
		t.Errorf("expected highest-point own vision %s, got %s (low=%s)", high.ID, got.ID, low.ID)
	}
}

func TestToggleViewMode(t *testing.T) {
	s := newTestStore(instantGateway("x"))

	if s.ViewMode() != ViewModeMine {
		t.Fatalf("expected initial mine mode, got %s", s.ViewMode())
	}
	if got := s.ToggleViewMode(); got != ViewModeCity {
		t.Errorf("expected city after toggle, got %s", got)
	}
	if got := s.ToggleViewMode(); got != ViewModeMine {
		t.Errorf("expected mine after second toggle, got %s", got)
	}

	s.SetViewMode(ViewMode("bogus"))
	if s.ViewMode() != ViewModeMine {
		t.Errorf("bogus mode applied: %s", s.ViewMode())
	}
}

func TestResetOrphansInFlightGeneration(t *testing.T) {
	gw := newBlockingGateway("https://img.example.com/late.png", nil)
	s := newTestStore(gw)

	done := make(chan struct{})
	var late *domain.Vision
	go func() {
		late, _ = s.Submit(context.Background(), "a mural wall", "addr")
		close(done)
	}()
	<-gw.began

	s.Reset()

	close(gw.proceed)
	<-done

	if late != nil {
		t.Errorf("reconciliation after reset should be a no-op, got snapshot %+v", late)
	}
	if len(s.ListCity()) != 0 {
		t.Errorf("reset store repopulated: %d visions", len(s.ListCity()))
	}
	if s.Points() != domain.StartingPoints {
		t.Errorf("expected starting ledger after reset, got %d", s.Points())
	}
}

func TestSubscribeReceivesLifecycleEvents(t *testing.T) {
	s := newTestStore(instantGateway("https://img.example.com/done.png"))

	events, cancel := s.Subscribe()
	defer cancel()

	v, err := s.Submit(context.Background(), "community garden beds", "addr")
	if err != nil {
		t.Fatal(err)
	}
	s.Like(v.ID)

	expected := []EventType{EventVisionSubmitted, EventVisionReady, EventVisionLiked}
	for _, want := range expected {
		select {
		case ev := <-events:
			if ev.Type != want {
				t.Errorf("expected %s, got %s", want, ev.Type)
			}
			if ev.Vision.ID != v.ID {
				t.Errorf("event carries wrong vision: %s", ev.Vision.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestSubscribeFailedEvent(t *testing.T) {
	s := newTestStore(failingGateway(service.ReasonContentPolicy))

	events, cancel := s.Subscribe()
	defer cancel()

	s.Submit(context.Background(), "something rejected", "addr")

	var got []EventType
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out, events so far: %v", got)
		}
	}
	if got[0] != EventVisionSubmitted || got[1] != EventVisionFailed {
		t.Errorf("unexpected event sequence: %v", got)
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	s := newTestStore(instantGateway("x"))

	events, cancel := s.Subscribe()
	cancel()

	s.Submit(context.Background(), "anything at all", "addr")

	if _, open := <-events; open {
		t.Error("expected channel closed after cancel")
	}
}

func TestConcurrentSubmitsAndLikes(t *testing.T) {
	s := newTestStore(instantGateway("x"))

	const n = 10
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			s.Submit(context.Background(), fmt.Sprintf("crosswalk art %d", i), "addr")
			for _, v := range s.ListCity() {
				s.Like(v.ID)
			}
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for concurrent operations")
		}
	}

	city := s.ListCity()
	if len(city) != n {
		t.Fatalf("expected %d visions, got %d", n, len(city))
	}
	for _, v := range city {
		if v.Points < domain.PointsVisionSubmission {
			t.Errorf("vision %s below base award: %d", v.ID, v.Points)
		}
		seen := make(map[string]bool)
		for _, u := range v.LikedBy {
			if seen[u] {
				t.Errorf("duplicate likedBy entry on %s: %v", v.ID, v.LikedBy)
			}
			seen[u] = true
		}
	}
}
