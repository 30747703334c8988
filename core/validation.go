// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Per-profile caps on set sizes.
const (
	MaxSkills         = 20
	MaxInterests      = 15
	MaxPreferredRoles = 10
	MaxDomainInterest = 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeProfile returns a cleaned copy of p with trimmed text fields,
// normalized sets, a default level and an up-to-date TextDigest.
// The embedding and its digest are carried over untouched.
func NormalizeProfile(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	n := p.Clone()
	n.UserID = strings.TrimSpace(n.UserID)
	n.Name = strings.TrimSpace(n.Name)
	n.Bio = strings.TrimSpace(n.Bio)
	n.College = strings.TrimSpace(n.College)
	n.Location = strings.TrimSpace(n.Location)
	n.Skills = NormalizeSet(n.Skills, MaxSkills)
	n.Interests = NormalizeSet(n.Interests, MaxInterests)
	n.PreferredRoles = NormalizeSet(n.PreferredRoles, MaxPreferredRoles)
	n.DomainInterest = NormalizeSet(n.DomainInterest, MaxDomainInterest)
	if n.Level == 0 {
		n.Level = 1
	}
	n.TextDigest = DigestFromContent(n.EmbeddingText())
	return n
}

// ValidateProfile validates a Profile according to domain rules.
//
// Validation rules:
//   - UserID must not be empty
//   - XP must be >= 0 and Level >= 1
//   - GraduationYear, when set, must be within 1950..2100
//   - Sets must not contain empty or duplicate entries
//
// NOT validated (populated by the embedding pipeline):
//   - Embedding (checked against the index dimension by the index)
func ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	for name, set := range map[string][]string{
		"skills":         p.Skills,
		"interests":      p.Interests,
		"preferredRoles": p.PreferredRoles,
		"domainInterest": p.DomainInterest,
	} {
		if err := validateSet(set); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, name, err)
		}
	}
	return nil
}

// ValidateFilters checks that a FilterSet is well formed.
func ValidateFilters(f FilterSet) error {
	if f.GradYear != nil {
		r := f.GradYear
		if r.Min < 0 || r.Max < 0 {
			return fmt.Errorf("%w: graduation year cannot be negative", ErrInvalidFilter)
		}
		if r.Min != 0 && r.Max != 0 && r.Min > r.Max {
			return fmt.Errorf("%w: gradYearMin %d is greater than gradYearMax %d", ErrInvalidFilter, r.Min, r.Max)
		}
	}
	if err := validateSet(f.Skills); err != nil {
		return fmt.Errorf("%w: skills: %w", ErrInvalidFilter, err)
	}
	if err := validateSet(f.DomainInterest); err != nil {
		return fmt.Errorf("%w: domainInterest: %w", ErrInvalidFilter, err)
	}
	return nil
}

func validateSet(values []string) error {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return errors.New("empty entry")
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate entry %q", v)
		}
		seen[key] = struct{}{}
	}
	return nil
}
