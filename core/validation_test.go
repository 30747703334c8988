package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		wantErr error
	}{
		{
			name:    "valid profile",
			profile: &Profile{UserID: "u1", Skills: []string{"go"}, Level: 1},
			wantErr: nil,
		},
		{
			name:    "valid profile with graduation year",
			profile: &Profile{UserID: "u1", GraduationYear: 2026, Level: 3, XP: 120},
			wantErr: nil,
		},
		{
			name:    "nil profile",
			profile: nil,
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "missing user id",
			profile: &Profile{Level: 1},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "negative xp",
			profile: &Profile{UserID: "u1", XP: -1, Level: 1},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "zero level",
			profile: &Profile{UserID: "u1"},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "graduation year out of range",
			profile: &Profile{UserID: "u1", GraduationYear: 1800, Level: 1},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "duplicate skill ignoring case",
			profile: &Profile{UserID: "u1", Skills: []string{"Go", "go"}, Level: 1},
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "empty role",
			profile: &Profile{UserID: "u1", PreferredRoles: []string{" "}, Level: 1},
			wantErr: ErrInvalidProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestNormalizeProfile(t *testing.T) {
	in := &Profile{
		UserID:         " u1 ",
		Bio:            "  hello ",
		Skills:         []string{" React", "react", "", "Go"},
		PreferredRoles: []string{"Frontend"},
		College:        " MIT ",
		Embedding:      []float32{1, 0},
	}

	out := NormalizeProfile(in)

	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, "hello", out.Bio)
	assert.Equal(t, []string{"React", "Go"}, out.Skills)
	assert.Equal(t, "MIT", out.College)
	assert.Equal(t, 1, out.Level, "level defaults to 1")
	assert.Equal(t, DigestFromContent(out.EmbeddingText()), out.TextDigest)
	assert.Equal(t, []float32{1, 0}, out.Embedding)

	// input untouched
	assert.Equal(t, " u1 ", in.UserID)
	assert.Len(t, in.Skills, 4)

	require.NoError(t, ValidateProfile(out))
	assert.Nil(t, NormalizeProfile(nil))
}

func TestNormalizeProfile_Caps(t *testing.T) {
	skills := make([]string, 0, 30)
	for i := range 30 {
		skills = append(skills, string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	out := NormalizeProfile(&Profile{UserID: "u1", Skills: skills})
	assert.Len(t, out.Skills, MaxSkills)
}

func TestValidateFilters(t *testing.T) {
	t.Run("empty filters are valid", func(t *testing.T) {
		assert.NoError(t, ValidateFilters(FilterSet{}))
	})

	t.Run("inverted range", func(t *testing.T) {
		err := ValidateFilters(FilterSet{GradYear: &YearRange{Min: 2027, Max: 2024}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("equal bounds", func(t *testing.T) {
		assert.NoError(t, ValidateFilters(FilterSet{GradYear: &YearRange{Min: 2025, Max: 2025}}))
	})

	t.Run("negative year", func(t *testing.T) {
		err := ValidateFilters(FilterSet{GradYear: &YearRange{Min: -1}})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("duplicate skill", func(t *testing.T) {
		err := ValidateFilters(FilterSet{Skills: []string{"go", "Go"}})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})
}
