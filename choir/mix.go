package choir

import (
	"github.com/jsphweid/choirscore/score"
)

type MixSettings struct {
	SoloVolume          float64
	AccompanimentVolume float64
	Velocity            int
}

// Mix is a copy of the document prepared for rendering one choir part.
type Mix struct {
	Part string
	Doc  *score.Document
}

// Mixes returns one prepared copy of doc per choir part, in part order.
// doc itself is not changed.
func Mixes(doc *score.Document, roles *Roles, settings MixSettings) ([]Mix, error) {
	if roles == nil {
		roles = DefaultRoles()
	}
	log := doc.Logger()
	var res []Mix
	for i, p := range doc.Parts {
		if !roles.IsChoirPart(p) {
			log.Debugf("mix: %q is accompaniment", p.Name)
			continue
		}
		cp, err := score.Load(doc.Tree.Copy(), log)
		if err != nil {
			return nil, err
		}
		cp.PrepareMix(cp.Parts[i], settings.SoloVolume, settings.AccompanimentVolume, settings.Velocity)
		log.Infof("mix: prepared %q", p.Name)
		res = append(res, Mix{Part: p.Name, Doc: cp})
	}
	return res, nil
}
