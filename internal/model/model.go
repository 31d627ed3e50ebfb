package model

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Content is one recommendable catalog entry. Provider-assigned ids exist
// only while an aggregation run deduplicates raw items; they are not kept
// on the value.
type Content struct {
	Title        string   `json:"title"`
	Year         string   `json:"year,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	Genres       []string `json:"genres"`
	Overview     string   `json:"description"`
	WhereToWatch []string `json:"where_to_watch"`
}

// ProviderItem is a raw listing entry as returned by the metadata provider,
// before detail enrichment and normalization.
type ProviderItem struct {
	ID          int
	Title       string
	ReleaseDate string
	Rating      float64
	Overview    string
}

type UserPreferences struct {
	FavoriteGenres []string
	MinimumRating  float64
}

// UserKey indexes per-user rotation state.
type UserKey string

// BuildUserKey derives a stable key from the preference set. Genre order
// must not matter, so genres are sorted before hashing; the minimum rating
// is folded in by bit pattern to avoid float formatting drift.
func (p UserPreferences) BuildUserKey() UserKey {
	genres := slices.Clone(p.FavoriteGenres)
	slices.Sort(genres)

	var b strings.Builder
	for _, g := range genres {
		b.WriteString(g)
		b.WriteByte(0)
	}
	b.WriteString(strconv.FormatUint(math.Float64bits(p.MinimumRating), 16))

	return UserKey(uuid.NewSHA1(uuid.NameSpaceOID, []byte(b.String())).String())
}

// Snapshot is the durable form of the in-process state: the catalog, the
// per-user rotation sets and the refresh clock, written and restored as
// one unit.
type Snapshot struct {
	Content     []Content            `json:"content"`
	Rotation    map[UserKey][]string `json:"rotation"`
	LastUpdated time.Time            `json:"last_updated"`
}
