package domain

import "time"

// GenerationStatus represents the image-generation lifecycle of a vision.
// Values include GenerationPending, GenerationReady, and GenerationFailed.
// Transitions only go pending -> ready or pending -> failed; both are terminal.
type GenerationStatus string

const (
	GenerationPending GenerationStatus = "pending"
	GenerationReady   GenerationStatus = "ready"
	GenerationFailed  GenerationStatus = "failed"
)

// Vision represents a user-submitted civic proposal tied to a street address.
// ImageURL starts as a placeholder and is replaced by the generated image on
// success; GeneratedImageURL is set only once generation has succeeded.
type Vision struct {
	ID                string           `json:"id"`
	Text              string           `json:"text"`
	Address           string           `json:"address"`
	Category          CategoryID       `json:"category"`
	ImageURL          string           `json:"image_url"`
	GeneratedImageURL string           `json:"generated_image_url,omitempty"`
	OwnerID           string           `json:"owner_id"`
	Points            int              `json:"points"`
	LikedBy           []string         `json:"liked_by"`
	CreatedAt         time.Time        `json:"created_at"`
	Status            GenerationStatus `json:"generation_status"`
}

// LikedByUser reports whether the given user already appears in LikedBy.
// Parameters:
//   - userID: user identifier to look up.
// Returns:
//   - bool: true if the user has liked this vision.
func (v *Vision) LikedByUser(userID string) bool {
	for _, id := range v.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the vision. The store hands out clones so
// readers never alias internal state.
// Parameters: none.
// Returns:
//   - *Vision: independent copy including the LikedBy slice.
func (v *Vision) Clone() *Vision {
	c := *v
	if v.LikedBy != nil {
		c.LikedBy = make([]string, len(v.LikedBy))
		copy(c.LikedBy, v.LikedBy)
	}
	return &c
}
