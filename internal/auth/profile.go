package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/jobtrackr/jobtrackr/internal/models"
)

// ProfilePatch is a partial profile update. Absent keys leave the stored
// value unchanged.
type ProfilePatch struct {
	Name               *string            `json:"name"`
	Headline           *string            `json:"headline"`
	Education          *string            `json:"education"`
	GraduationYear     *string            `json:"graduationYear"`
	Location           *string            `json:"location"`
	Skills             *models.StringList `json:"skills"`
	LinkedIn           *string            `json:"linkedin"`
	GitHub             *string            `json:"github"`
	Portfolio          *string            `json:"portfolio"`
	EmailNotifications *bool              `json:"emailNotifications"`
}

func (p *ProfilePatch) normalize() {
	for _, s := range []*string{p.Name, p.Headline, p.Education, p.GraduationYear, p.Location,
		p.LinkedIn, p.GitHub, p.Portfolio} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// Validate implements validation.Validatable.
func (p ProfilePatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.LinkedIn, is.URL),
		validation.Field(&p.GitHub, is.URL),
		validation.Field(&p.Portfolio, is.URL),
	)
}

func (p *ProfilePatch) apply(u *models.User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, p.Name)
	set(&u.Headline, p.Headline)
	set(&u.Education, p.Education)
	set(&u.GraduationYear, p.GraduationYear)
	set(&u.Location, p.Location)
	set(&u.LinkedIn, p.LinkedIn)
	set(&u.GitHub, p.GitHub)
	set(&u.Portfolio, p.Portfolio)
	if p.Skills != nil {
		u.Skills = []string(*p.Skills)
	}
	if p.EmailNotifications != nil {
		u.EmailNotifications = *p.EmailNotifications
	}
}
