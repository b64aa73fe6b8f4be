package domain

// Point awards granted by the scoring rules. The submission award is applied
// to both the new vision and the submitter's ledger; likes award the liker
// and the liked vision separately.
const (
	PointsVisionSubmission     = 3
	PointsLikeGiven            = 1
	PointsLikeReceived         = 1
	PointsFundingSelectedBonus = 10
)

// StartingPoints is the ledger value a fresh session begins with.
const StartingPoints = 10

// Ledger is the running point total attributed to the current user.
// It only ever grows: awards are applied through the methods below and no
// rule ever subtracts from it, including generation failures after the
// submission award was granted.
type Ledger int

// ApplySubmission returns the ledger with the submission award applied.
// Parameters: none.
// Returns:
//   - Ledger: updated total.
func (l Ledger) ApplySubmission() Ledger {
	return l + PointsVisionSubmission
}

// ApplyLikeGiven returns the ledger with the like-given award applied.
// Parameters: none.
// Returns:
//   - Ledger: updated total.
func (l Ledger) ApplyLikeGiven() Ledger {
	return l + PointsLikeGiven
}

// Total returns the ledger as a plain int for serialization.
// Parameters: none.
// Returns:
//   - int: current total.
func (l Ledger) Total() int {
	return int(l)
}
