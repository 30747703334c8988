package score

import (
	"testing"

	"github.com/poiesic/teamup/core"
	"github.com/stretchr/testify/assert"
)

func TestCompatibility(t *testing.T) {
	tests := []struct {
		name string
		a, b *core.Profile
		want int
	}{
		{
			name: "nothing comparable",
			a:    &core.Profile{UserID: "a"},
			b:    &core.Profile{UserID: "b"},
			want: 0,
		},
		{
			name: "identical attributes",
			a:    &core.Profile{Skills: []string{"go"}, PreferredRoles: []string{"backend"}, DomainInterest: []string{"web"}},
			b:    &core.Profile{Skills: []string{"Go"}, PreferredRoles: []string{"Backend"}, DomainInterest: []string{"Web"}},
			want: 100,
		},
		{
			name: "half skills only",
			a:    &core.Profile{Skills: []string{"go", "rust"}},
			b:    &core.Profile{Skills: []string{"go"}},
			want: 50,
		},
		{
			name: "disjoint skills with shared location",
			a:    &core.Profile{Skills: []string{"go"}, Location: "Berlin"},
			b:    &core.Profile{Skills: []string{"python"}, Location: "berlin"},
			want: 20, // 10 of 50
		},
		{
			name: "different location does not count against",
			a:    &core.Profile{Skills: []string{"go"}, Location: "Berlin"},
			b:    &core.Profile{Skills: []string{"go"}, Location: "Paris"},
			want: 100,
		},
		{
			name: "one side empty is skipped",
			a:    &core.Profile{Skills: []string{"go"}, PreferredRoles: []string{"backend"}},
			b:    &core.Profile{Skills: []string{"go"}},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatibility(tt.a, tt.b))
		})
	}
}

func TestCompatibility_Symmetric(t *testing.T) {
	a := frontendDev()
	b := mlEngineer()
	assert.Equal(t, Compatibility(a, b), Compatibility(b, a))
}
