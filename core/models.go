package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"slices"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DigestFromContent returns a deterministic 64-bit BLAKE2b digest of text.
// Identical text always produces identical digests.
func DigestFromContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Profile is a user's teammate-matching profile as held by the index.
type Profile struct {
	UserID         string    `json:"userId" validate:"required"`
	Name           string    `json:"name,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Skills         []string  `json:"skills,omitempty"`
	Interests      []string  `json:"interests,omitempty"`
	PreferredRoles []string  `json:"preferredRoles,omitempty"`
	DomainInterest []string  `json:"domainInterest,omitempty"`
	College        string    `json:"college,omitempty"`
	Location       string    `json:"location,omitempty"`
	GraduationYear int       `json:"graduationYear,omitempty" validate:"omitempty,gte=1950,lte=2100"` // 0 when unknown
	XP             int       `json:"xp" validate:"gte=0"`
	Level          int       `json:"level" validate:"gte=1"`
	Embedding      []float32 `json:"embedding,omitempty"`

	// TextDigest is the digest of EmbeddingText for the current attributes.
	TextDigest uint64 `json:"-"`
	// EmbeddingDigest is the digest of the text Embedding was computed from.
	// Zero when the embedding is the default zero vector.
	EmbeddingDigest uint64    `json:"-"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EmbeddingText builds the text that represents the profile in vector space:
// bio, skills, interests, roles, domains, college and location joined by spaces.
func (p *Profile) EmbeddingText() string {
	parts := make([]string, 0, 2+len(p.Skills)+len(p.Interests)+len(p.PreferredRoles)+len(p.DomainInterest))
	if bio := strings.TrimSpace(p.Bio); bio != "" {
		parts = append(parts, bio)
	}
	parts = append(parts, p.Skills...)
	parts = append(parts, p.Interests...)
	parts = append(parts, p.PreferredRoles...)
	parts = append(parts, p.DomainInterest...)
	if college := strings.TrimSpace(p.College); college != "" {
		parts = append(parts, college)
	}
	if location := strings.TrimSpace(p.Location); location != "" {
		parts = append(parts, location)
	}
	return strings.Join(parts, " ")
}

// IsStale reports whether the stored embedding was computed from older text.
func (p *Profile) IsStale() bool {
	return p.TextDigest != p.EmbeddingDigest
}

// HasEmbedding reports whether the profile carries a non-zero vector.
func (p *Profile) HasEmbedding() bool {
	for _, v := range p.Embedding {
		if v != 0 {
			return true
		}
	}
	return false
}

// IsIncomplete reports whether there is nothing to score a recommendation against.
func (p *Profile) IsIncomplete() bool {
	return len(p.Skills) == 0 && len(p.PreferredRoles) == 0
}

// Clone returns a deep copy. Index records are immutable, so callers
// receive clones rather than shared pointers.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Skills = slices.Clone(p.Skills)
	c.Interests = slices.Clone(p.Interests)
	c.PreferredRoles = slices.Clone(p.PreferredRoles)
	c.DomainInterest = slices.Clone(p.DomainInterest)
	c.Embedding = slices.Clone(p.Embedding)
	return &c
}

// SameAttributes reports whether two profiles carry identical attribute and
// vector state, ignoring UpdatedAt.
func (p *Profile) SameAttributes(o *Profile) bool {
	return p.UserID == o.UserID &&
		p.Name == o.Name &&
		p.Bio == o.Bio &&
		slices.Equal(p.Skills, o.Skills) &&
		slices.Equal(p.Interests, o.Interests) &&
		slices.Equal(p.PreferredRoles, o.PreferredRoles) &&
		slices.Equal(p.DomainInterest, o.DomainInterest) &&
		p.College == o.College &&
		p.Location == o.Location &&
		p.GraduationYear == o.GraduationYear &&
		p.XP == o.XP &&
		p.Level == o.Level &&
		slices.Equal(p.Embedding, o.Embedding) &&
		p.TextDigest == o.TextDigest &&
		p.EmbeddingDigest == o.EmbeddingDigest
}

// YearRange is an inclusive graduation year range. A zero bound is open.
type YearRange struct {
	Min int
	Max int
}

// Contains reports whether year lies within the range, inclusive on both ends.
func (r YearRange) Contains(year int) bool {
	if r.Min != 0 && year < r.Min {
		return false
	}
	if r.Max != 0 && year > r.Max {
		return false
	}
	return true
}

// FilterSet is the closed set of structured predicates applied before
// similarity ranking. Zero-valued fields impose no constraint.
type FilterSet struct {
	College        string
	Location       string
	DomainInterest []string
	Skills         []string
	GradYear       *YearRange
}

// IsEmpty reports whether no predicate is set.
func (f FilterSet) IsEmpty() bool {
	return f.College == "" && f.Location == "" &&
		len(f.DomainInterest) == 0 && len(f.Skills) == 0 && f.GradYear == nil
}

// ScoredID is a raw retrieval hit.
type ScoredID struct {
	UserID     string
	Similarity float64
}

// CandidateMatch is one ranked candidate with its score breakdown.
// For plain search only Similarity is populated and CompositeScore mirrors it.
type CandidateMatch struct {
	UserID                string   `json:"userId"`
	Similarity            float64  `json:"similarity"`
	SkillsComplementarity float64  `json:"skillsComplementarity"`
	RoleComplementarity   float64  `json:"roleComplementarity"`
	DomainAlignment       float64  `json:"domainAlignment"`
	LocaleBonus           float64  `json:"localeBonus"`
	CompositeScore        float64  `json:"compositeScore"`
	MatchReasons          []string `json:"matchReasons,omitempty"`
}

// Team is an automatically formed group of users.
type Team struct {
	Members []string `json:"members"`
	Score   float64  `json:"score"`
}

// Checkpoint records how far a batch processor got.
type Checkpoint struct {
	ProcessorType string
	LastUserID    string
	UpdatedAt     time.Time
}
