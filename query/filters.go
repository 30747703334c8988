package query

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/poiesic/teamup/core"
)

// StringList accepts either a single JSON string or an array of strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a string or an array of strings: %w", err)
	}
	*l = list
	return nil
}

// RawFilters is the loosely typed filter input hosts pass through from
// query strings or request bodies.
type RawFilters struct {
	College        string     `json:"college,omitempty" validate:"max=200"`
	Location       string     `json:"location,omitempty" validate:"max=200"`
	DomainInterest StringList `json:"domainInterest,omitempty" validate:"max=10,dive,max=100"`
	// Skills entries may themselves be comma separated.
	Skills      StringList `json:"skills,omitempty" validate:"max=50,dive,max=200"`
	GradYearMin string     `json:"gradYearMin,omitempty" validate:"omitempty,numeric"`
	GradYearMax string     `json:"gradYearMax,omitempty" validate:"omitempty,numeric"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeFilters validates raw and converts it into a closed FilterSet.
//
// Skills are split on commas, trimmed, lower-cased and de-duplicated.
// Domain interests are trimmed and de-duplicated. Years must parse as
// integers and the range must not be inverted.
func NormalizeFilters(raw RawFilters) (core.FilterSet, error) {
	if err := validate.Struct(raw); err != nil {
		return core.FilterSet{}, fmt.Errorf("%w: %w", core.ErrInvalidFilter, err)
	}

	var skills []string
	for _, entry := range raw.Skills {
		for _, s := range strings.Split(entry, ",") {
			skills = append(skills, strings.ToLower(strings.TrimSpace(s)))
		}
	}

	fs := core.FilterSet{
		College:        strings.TrimSpace(raw.College),
		Location:       strings.TrimSpace(raw.Location),
		DomainInterest: core.NormalizeSet(raw.DomainInterest, 0),
		Skills:         core.NormalizeSet(skills, 0),
	}

	minYear, err := parseYear("gradYearMin", raw.GradYearMin)
	if err != nil {
		return core.FilterSet{}, err
	}
	maxYear, err := parseYear("gradYearMax", raw.GradYearMax)
	if err != nil {
		return core.FilterSet{}, err
	}
	if raw.GradYearMin != "" || raw.GradYearMax != "" {
		fs.GradYear = &core.YearRange{Min: minYear, Max: maxYear}
	}

	if err := core.ValidateFilters(fs); err != nil {
		return core.FilterSet{}, err
	}
	return fs, nil
}

func parseYear(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a year", core.ErrInvalidFilter, field, s)
	}
	return year, nil
}
