package domain

import "testing"

func TestLedgerApplySubmission(t *testing.T) {
	l := Ledger(StartingPoints)

	l = l.ApplySubmission()
	if l.Total() != StartingPoints+PointsVisionSubmission {
		t.Errorf("expected %d, got %d", StartingPoints+PointsVisionSubmission, l.Total())
	}

	l = l.ApplySubmission()
	if l.Total() != StartingPoints+2*PointsVisionSubmission {
		t.Errorf("expected %d, got %d", StartingPoints+2*PointsVisionSubmission, l.Total())
	}
}

func TestLedgerApplyLikeGiven(t *testing.T) {
	l := Ledger(0)
	for i := 0; i < 5; i++ {
		l = l.ApplyLikeGiven()
	}
	if l.Total() != 5*PointsLikeGiven {
		t.Errorf("expected %d, got %d", 5*PointsLikeGiven, l.Total())
	}
}

func TestLedgerNeverDecreases(t *testing.T) {
	l := Ledger(StartingPoints)
	prev := l.Total()

	ops := []func(Ledger) Ledger{
		Ledger.ApplySubmission,
		Ledger.ApplyLikeGiven,
		Ledger.ApplySubmission,
		Ledger.ApplyLikeGiven,
	}
	for i, op := range ops {
		l = op(l)
		if l.Total() < prev {
			t.Fatalf("ledger decreased at op %d: %d -> %d", i, prev, l.Total())
		}
		prev = l.Total()
	}
}

func TestVisionClone(t *testing.T) {
	v := &Vision{
		ID:      "v-1",
		Points:  5,
		LikedBy: []string{"user-2"},
	}

	c := v.Clone()
	c.LikedBy = append(c.LikedBy, "user-3")
	c.Points = 6

	if len(v.LikedBy) != 1 {
		t.Errorf("clone mutation leaked into original LikedBy: %v", v.LikedBy)
	}
	if v.Points != 5 {
		t.Errorf("clone mutation leaked into original Points: %d", v.Points)
	}
}

func TestLikedByUser(t *testing.T) {
	v := &Vision{LikedBy: []string{"user-2", "user-3"}}

	if !v.LikedByUser("user-2") {
		t.Error("expected user-2 to be found")
	}
	if v.LikedByUser("user-9") {
		t.Error("expected user-9 to be absent")
	}
}
