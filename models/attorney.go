package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Seniority represents an attorney's seniority level
type Seniority string

const (
	SeniorityAssociate       Seniority = "Associate"
	SenioritySeniorAssociate Seniority = "Senior Associate"
	SeniorityPartner         Seniority = "Partner"
	SenioritySeniorPartner   Seniority = "Senior Partner"
)

// Proficiency represents an attorney's proficiency in a practice area
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "Beginner"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyAdvanced     Proficiency = "Advanced"
	ProficiencyExpert       Proficiency = "Expert"
)

// ImpactLevel represents the impact of a case or public source
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "Low"
	ImpactMedium ImpactLevel = "Medium"
	ImpactHigh   ImpactLevel = "High"
)

// Business rule constants
const (
	MaxNameLength      = 200
	MaxYearsExperience = 60
	MaxPracticeAreas   = 10
	MaxAreaLength      = 100
)

var emailPattern = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.\w+$`)

// ParseSeniority matches a seniority value case-insensitively and returns
// the canonical form.
func ParseSeniority(v string) (Seniority, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "associate":
		return SeniorityAssociate, true
	case "senior associate":
		return SenioritySeniorAssociate, true
	case "partner":
		return SeniorityPartner, true
	case "senior partner":
		return SenioritySeniorPartner, true
	}
	return "", false
}

// ParseProficiency matches a proficiency value case-insensitively.
func ParseProficiency(v string) (Proficiency, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "beginner":
		return ProficiencyBeginner, true
	case "intermediate":
		return ProficiencyIntermediate, true
	case "advanced":
		return ProficiencyAdvanced, true
	case "expert":
		return ProficiencyExpert, true
	}
	return "", false
}

// ParseImpact matches an impact level case-insensitively.
func ParseImpact(v string) (ImpactLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "low":
		return ImpactLow, true
	case "medium":
		return ImpactMedium, true
	case "high":
		return ImpactHigh, true
	}
	return "", false
}

// PracticeArea represents one practice area of an attorney
type PracticeArea struct {
	Area            string      `json:"area"`
	Proficiency     Proficiency `json:"proficiency"`
	YearsInPractice int         `json:"years_in_practice"`
}

// PracticeAreas is an ordered list of practice areas stored as JSONB
type PracticeAreas []PracticeArea

// Value implements driver.Valuer for JSONB
func (p PracticeAreas) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *PracticeAreas) Scan(value interface{}) error {
	if value == nil {
		*p = make(PracticeAreas, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*p = make(PracticeAreas, 0)
		return nil
	}

	if len(bytes) == 0 {
		*p = make(PracticeAreas, 0)
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// MajorCase represents a notable case handled by an attorney
type MajorCase struct {
	Title   string      `json:"title"`
	Outcome string      `json:"outcome"`
	Impact  ImpactLevel `json:"impact"`
}

// MajorCases is an ordered list of major cases stored as JSONB
type MajorCases []MajorCase

// Value implements driver.Valuer for JSONB
func (m MajorCases) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *MajorCases) Scan(value interface{}) error {
	if value == nil {
		*m = make(MajorCases, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(MajorCases, 0)
		return nil
	}

	if len(bytes) == 0 {
		*m = make(MajorCases, 0)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Attorney represents a stored attorney profile. Seniority doubles as the
// partition column for the attorneys table.
type Attorney struct {
	ID                string        `json:"attorney_id"`
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	Seniority         Seniority     `json:"seniority"`
	YearsOfExperience int           `json:"years_of_experience"`
	PracticeAreas     PracticeAreas `json:"practice_areas"`
	MajorCases        MajorCases    `json:"major_cases"`
	Jurisdictions     []string      `json:"jurisdictions"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// AttorneyInput holds the fields a caller supplies when creating an
// attorney, either from a request body or a workbook row.
type AttorneyInput struct {
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	Seniority         string        `json:"seniority"`
	YearsOfExperience int           `json:"years_of_experience"`
	PracticeAreas     PracticeAreas `json:"practice_areas"`
	MajorCases        MajorCases    `json:"major_cases"`
	Jurisdictions     []string      `json:"jurisdictions"`
}

// Validate checks the input against the allowed enumerations and business
// rules. It normalizes seniority, proficiency and impact values in place and
// returns all field errors rather than stopping at the first.
func (in *AttorneyInput) Validate() ValidationErrors {
	var errs ValidationErrors

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.Add("name", "name is required")
	} else if len(name) > MaxNameLength {
		errs.Add("name", fmt.Sprintf("name exceeds %d characters", MaxNameLength))
	}
	in.Name = name

	if in.Email != "" && !emailPattern.MatchString(in.Email) {
		errs.Add("email", "invalid email format")
	}

	if sen, ok := ParseSeniority(in.Seniority); ok {
		in.Seniority = string(sen)
	} else {
		errs.Add("seniority", "seniority must be one of: Associate, Senior Associate, Partner, Senior Partner")
	}

	if in.YearsOfExperience < 0 || in.YearsOfExperience > MaxYearsExperience {
		errs.Add("years_of_experience", fmt.Sprintf("years of experience must be between 0 and %d", MaxYearsExperience))
	}

	if len(in.PracticeAreas) > MaxPracticeAreas {
		errs.Add("practice_areas", fmt.Sprintf("maximum %d practice areas allowed", MaxPracticeAreas))
	}
	for i := range in.PracticeAreas {
		pa := &in.PracticeAreas[i]
		if pa.Area == "" {
			errs.Add(fmt.Sprintf("practice_areas[%d].area", i), "area is required")
		} else if len(pa.Area) > MaxAreaLength {
			errs.Add(fmt.Sprintf("practice_areas[%d].area", i), fmt.Sprintf("area exceeds %d characters", MaxAreaLength))
		}
		if prof, ok := ParseProficiency(string(pa.Proficiency)); ok {
			pa.Proficiency = prof
		} else {
			errs.Add(fmt.Sprintf("practice_areas[%d].proficiency", i), "proficiency must be one of: Beginner, Intermediate, Advanced, Expert")
		}
		if pa.YearsInPractice < 0 {
			errs.Add(fmt.Sprintf("practice_areas[%d].years_in_practice", i), "years in practice cannot be negative")
		} else if pa.YearsInPractice > in.YearsOfExperience {
			// Cap at total experience rather than rejecting
			pa.YearsInPractice = in.YearsOfExperience
		}
	}

	for i := range in.MajorCases {
		mc := &in.MajorCases[i]
		if mc.Title == "" {
			errs.Add(fmt.Sprintf("major_cases[%d].title", i), "title is required")
		}
		if imp, ok := ParseImpact(string(mc.Impact)); ok {
			mc.Impact = imp
		} else {
			errs.Add(fmt.Sprintf("major_cases[%d].impact", i), "impact must be one of: Low, Medium, High")
		}
	}

	return errs
}

// NewAttorneyID generates an attorney identifier of the form ATT-XXXXXXXX.
func NewAttorneyID() string {
	return "ATT-" + strings.ToUpper(uuid.New().String()[:8])
}

// NewAttorney maps a validated input to a stored attorney, assigning a
// fresh identifier and timestamps.
func NewAttorney(in AttorneyInput) *Attorney {
	now := time.Now().UTC()

	email := in.Email
	if email == "" {
		email = GeneratedEmail(in.Name)
	}

	a := &Attorney{
		ID:                NewAttorneyID(),
		Name:              in.Name,
		Email:             email,
		Seniority:         Seniority(in.Seniority),
		YearsOfExperience: in.YearsOfExperience,
		PracticeAreas:     in.PracticeAreas,
		MajorCases:        in.MajorCases,
		Jurisdictions:     in.Jurisdictions,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if a.PracticeAreas == nil {
		a.PracticeAreas = make(PracticeAreas, 0)
	}
	if a.MajorCases == nil {
		a.MajorCases = make(MajorCases, 0)
	}
	if a.Jurisdictions == nil {
		a.Jurisdictions = []string{}
	}
	return a
}

// GeneratedEmail builds a placeholder address from a name for bulk rows
// that omit one.
func GeneratedEmail(name string) string {
	local := strings.ToLower(strings.TrimSpace(name))
	local = strings.ReplaceAll(local, " ", ".")
	return local + "@lawfirm.com"
}
