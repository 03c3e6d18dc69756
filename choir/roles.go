// Package choir applies the choir conventions on top of voice extraction:
// which part plays which role, how divisi parts are split, and how practice
// mixes are prepared.
package choir

import (
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"

	"github.com/jsphweid/choirscore/score"
)

type Role string

const (
	Soprano      Role = "soprano"
	Alto         Role = "alto"
	Women        Role = "women"
	Tenor        Role = "tenor"
	Bass         Role = "bass"
	Men          Role = "men"
	HighVoices   Role = "high-voices"
	LowVoices    Role = "low-voices"
	MezzoSoprano Role = "mezzo-soprano"
	MezzoAlto    Role = "mezzo-alto"
	Mezzo        Role = "mezzo"
	BariTenor    Role = "bari-tenor"
	BariBass     Role = "bari-bass"
	Baritone     Role = "baritone"
)

var defaultSpellings = map[Role][]string{
	Soprano:      {"sopraan", "soprano"},
	Alto:         {"alt", "alto"},
	Women:        {"women", "vrouwen", "sopraan/alt", "sopraan\nalt", "soprano/alto", "soprano\nalto"},
	Tenor:        {"tenor"},
	Bass:         {"bass", "bas"},
	Men:          {"men", "mannen", "tenor/bas", "tenor\nbas", "tenor/bass", "tenor\nbass"},
	HighVoices:   {"sopraan/tenor", "sopraan\ntenor", "soprano/tenor", "soprano\ntenor"},
	LowVoices:    {"alt/bas", "alt\nbas", "alto/bass", "alto\nbass"},
	MezzoSoprano: {"mezzo-sopraan", "mezzo-soprano"},
	MezzoAlto:    {"mezzo-alt", "mezzo-alto"},
	Mezzo:        {"mezzo"},
	BariTenor:    {"bari-tenor"},
	BariBass:     {"bari-bas", "bari-bass"},
	Baritone:     {"bariton", "baritone"},
}

// Roles maps case-folded part names to choir roles.
type Roles struct {
	byName map[string]Role
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func DefaultRoles() *Roles {
	r := &Roles{byName: map[string]Role{}}
	for role, names := range defaultSpellings {
		r.Add(role, names...)
	}
	return r
}

// Add accepts more spellings for role. A spelling already in use moves to role.
func (r *Roles) Add(role Role, spellings ...string) {
	for _, s := range spellings {
		if f := fold(s); f != "" {
			r.byName[f] = role
		}
	}
}

func (r *Roles) Match(name string) (Role, bool) {
	role, ok := r.byName[fold(name)]
	return role, ok
}

func (r *Roles) Spellings(role Role) []string {
	var res []string
	for name, rl := range r.byName {
		if rl == role {
			res = append(res, name)
		}
	}
	slices.Sort(res)
	return res
}

// Is reports whether p is named after role, by part name or long instrument name.
func (r *Roles) Is(p *score.Part, role Role) bool {
	for _, name := range []string{p.Name, p.LongName} {
		if got, ok := r.Match(name); ok && got == role {
			return true
		}
	}
	return false
}

// Find returns the first part of doc playing role.
func (r *Roles) Find(doc *score.Document, role Role) *score.Part {
	return doc.FindPart(func(p *score.Part) bool { return r.Is(p, role) })
}

// IsChoirPart reports whether p plays any known role.
func (r *Roles) IsChoirPart(p *score.Part) bool {
	for _, name := range []string{p.Name, p.LongName} {
		if _, ok := r.Match(name); ok {
			return true
		}
	}
	return false
}
