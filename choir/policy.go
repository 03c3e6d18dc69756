package choir

import (
	"github.com/Southclaws/fault/ftag"

	"github.com/jsphweid/choirscore/extract"
	"github.com/jsphweid/choirscore/logging"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/score"
)

func DefaultNames() map[Role]model.PartName {
	return map[Role]model.PartName{
		Soprano:      {Long: "Sopraan", Short: "S."},
		Alto:         {Long: "Alt", Short: "A."},
		Tenor:        {Long: "Tenor", Short: "T."},
		Bass:         {Long: "Bas", Short: "B."},
		MezzoSoprano: {Long: "Mezzo-Sopraan", Short: "M.S."},
		MezzoAlto:    {Long: "Mezzo-Alt", Short: "M.A."},
		BariTenor:    {Long: "Bari-Tenor", Short: "B.T."},
		BariBass:     {Long: "Bari-Bas", Short: "B.B."},
	}
}

// Choir derives choir parts inside one document.
type Choir struct {
	doc   *score.Document
	roles *Roles
	names map[Role]model.PartName
	log   *logging.Logger

	// Diagnostics holds the skipped splits.
	Diagnostics []error
}

// New uses the default roles and names when roles or names are nil. Names
// missing from names fall back to the defaults.
func New(doc *score.Document, roles *Roles, names map[Role]model.PartName) *Choir {
	if roles == nil {
		roles = DefaultRoles()
	}
	merged := DefaultNames()
	for role, name := range names {
		merged[role] = name
	}
	return &Choir{doc: doc, roles: roles, names: merged, log: doc.Logger()}
}

func (c *Choir) report(kind ftag.Kind, msg string, desc string) {
	c.log.Warnf("%s: %s", kind, msg)
	c.Diagnostics = append(c.Diagnostics, model.Fail(kind, msg, desc))
}

// fresh returns the current version of p after the document was reloaded.
func (c *Choir) fresh(p *score.Part) *score.Part {
	if i := c.doc.PartIndex(p); i >= 0 {
		return c.doc.Parts[i]
	}
	return p
}

func (c *Choir) voices(p *score.Part) int {
	s := c.doc.StaffOf(p)
	if s == nil {
		return 0
	}
	return s.VoiceCount()
}

func (c *Choir) variation(base *score.Part, variation *score.Part, cut bool, role Role) error {
	_, err := extract.Variation(c.doc, extract.Request{
		Base:           c.fresh(base),
		BaseVoice:      0,
		Variation:      c.fresh(variation),
		VariationVoice: 1,
		Cut:            cut,
		Name:           c.names[role],
	})
	return err
}

// Variations derives mezzo and baritone parts from soprano/alto and tenor/bass
// pairs, or splits a combined women or men part when the pair is missing.
func (c *Choir) Variations() error {
	if sop, alto := c.roles.Find(c.doc, Soprano), c.roles.Find(c.doc, Alto); sop != nil && alto != nil {
		if err := c.ExtractMezzos(sop, alto); err != nil {
			return err
		}
	} else if women := c.roles.Find(c.doc, Women); women != nil {
		if err := c.SplitWomen(women); err != nil {
			return err
		}
	} else {
		c.report(model.MissingNamedPart, "no soprano and alto or women part", "No soprano/alto or women part was found")
	}

	if tenor, bass := c.roles.Find(c.doc, Tenor), c.roles.Find(c.doc, Bass); tenor != nil && bass != nil {
		if err := c.ExtractBaritones(tenor, bass); err != nil {
			return err
		}
	} else if men := c.roles.Find(c.doc, Men); men != nil {
		if err := c.SplitMen(men); err != nil {
			return err
		}
	} else {
		c.report(model.MissingNamedPart, "no tenor and bass or men part", "No tenor/bass or men part was found")
	}
	return nil
}

// divisi derives upperRole and lowerRole parts from the second voices of a pair.
// With two voices on both sides each side is split on its own. With two voices
// on one side only, that side's second voice is also merged into the other
// side, and only then cut.
func (c *Choir) divisi(upper *score.Part, lower *score.Part, upperRole Role, lowerRole Role) error {
	upperDivisi := c.voices(upper) >= 2
	lowerDivisi := c.voices(lower) >= 2
	c.log.Debugf("divisi %q: %v, %q: %v", upper.Name, upperDivisi, lower.Name, lowerDivisi)

	switch {
	case upperDivisi && lowerDivisi:
		if err := c.variation(upper, upper, true, upperRole); err != nil {
			return err
		}
		return c.variation(lower, lower, true, lowerRole)
	case upperDivisi:
		if err := c.variation(upper, upper, false, upperRole); err != nil {
			return err
		}
		return c.variation(lower, upper, true, lowerRole)
	case lowerDivisi:
		if err := c.variation(lower, lower, false, lowerRole); err != nil {
			return err
		}
		return c.variation(upper, lower, true, upperRole)
	}
	c.log.Infof("no divisi in %q or %q", upper.Name, lower.Name)
	return nil
}

func (c *Choir) ExtractMezzos(soprano *score.Part, alto *score.Part) error {
	return c.divisi(soprano, alto, MezzoSoprano, MezzoAlto)
}

func (c *Choir) ExtractBaritones(tenor *score.Part, bass *score.Part) error {
	return c.divisi(tenor, bass, BariTenor, BariBass)
}

// split turns a two voice part into upperRole (voice 1) and a new lowerRole part (voice 2).
func (c *Choir) split(p *score.Part, upperRole Role, lowerRole Role) error {
	if c.voices(p) < 2 {
		c.log.Infof("%q has a single voice, not split", p.Name)
		return nil
	}
	if err := c.variation(p, p, true, lowerRole); err != nil {
		return err
	}
	c.doc.SetPartName(c.fresh(p), c.names[upperRole])
	return nil
}

func (c *Choir) SplitWomen(p *score.Part) error {
	return c.split(p, Soprano, Alto)
}

func (c *Choir) SplitMen(p *score.Part) error {
	return c.split(p, Tenor, Bass)
}
