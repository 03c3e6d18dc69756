package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/tree"
	"github.com/jsphweid/choirscore/util"
)

type musicXML struct{}

// canonical order of <attributes> children
var attributeOrder = []string{
	"footnote", "level", "divisions", "key", "time", "staves", "part-symbol",
	"instruments", "clef", "staff-details", "transpose", "directive", "measure-style",
}

func (musicXML) load(d *Document) error {
	t := d.Tree
	partList := t.FirstChild(t.Root, "part-list")
	for _, sp := range t.ChildrenNamed(partList, "score-part") {
		id, _ := t.Attr(sp, "id")
		p := &Part{ID: id, Node: sp, StaffIDs: []string{id}, Volume: 1}
		p.Name = innerText(t, t.FirstChild(sp, "part-name"))
		p.ShortName = innerText(t, t.FirstChild(sp, "part-abbreviation"))
		p.LongName = innerText(t, t.Find(sp, "score-instrument", "instrument-name"))
		if p.LongName == "" {
			p.LongName = p.Name
		}
		if v, err := childFloat(t, t.FirstChild(sp, "midi-instrument"), "volume"); err == nil {
			p.Volume = v / 100
		}
		d.Parts = append(d.Parts, p)
	}
	for _, ph := range t.ChildrenNamed(t.Root, "part") {
		id, _ := t.Attr(ph, "id")
		s := &Staff{ID: id, Node: ph}
		musicXML{}.loadStaff(d, s)
		d.Staffs = append(d.Staffs, s)
	}
	return nil
}

func voiceIndex(t *tree.Tree, h tree.Handle) int {
	s, ok := t.ChildText(h, "voice")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

func (mx musicXML) loadStaff(d *Document, s *Staff) {
	t := d.Tree
	divisions := 1
	timeSig := rational.New(4, 4)
	for i, mh := range t.ChildrenNamed(s.Node, "measure") {
		m := &Measure{Node: mh, Index: i}
		m.Number, _ = t.Attr(mh, "number")
		where := fmt.Sprintf("part %s measure %d", s.ID, i+1)
		var steps []step
		for _, c := range t.Children(mh) {
			e := Element{Node: c}
			switch t.Name(c) {
			case "attributes":
				e.Pinned = true
				if dv, err := childInt(t, c, "divisions"); err == nil && dv > 0 {
					divisions = dv
				}
				if tm := t.FirstChild(c, "time"); tm != tree.Nil {
					beats, err1 := childInt(t, tm, "beats")
					beatType, err2 := childInt(t, tm, "beat-type")
					if err1 == nil && err2 == nil && beats > 0 && beatType > 0 {
						e.Kind, e.TimeSig = KindTimeSignature, rational.New(int64(beats), int64(beatType))
						timeSig, m.TimeSig = e.TimeSig, e.TimeSig
					}
				}
			case "note":
				e.Voice = voiceIndex(t, c)
				e.Kind = KindNote
				if t.FirstChild(c, "rest") != tree.Nil {
					e.Kind = KindRest
				}
				e.Simultaneous = t.FirstChild(c, "chord") != tree.Nil
				if t.FirstChild(c, "grace") == tree.Nil {
					dur, err := childInt(t, c, "duration")
					if err != nil || dur < 0 {
						e.Malformed = true
						d.report(model.MalformedElement, fmt.Sprintf("%s: note without a usable duration", where))
					} else {
						e.Nominal = rational.New(int64(dur), int64(4*divisions))
					}
				}
			case "backup", "forward":
				dur, err := childInt(t, c, "duration")
				if err != nil {
					d.report(model.MalformedElement, fmt.Sprintf("%s: <%s> without duration", where, t.Name(c)))
					continue
				}
				if t.Name(c) == "backup" {
					dur = -dur
				}
				steps = append(steps, advanceStep(rational.New(int64(dur), int64(4*divisions))))
				continue
			case "direction":
				e.Voice = voiceIndex(t, c)
				for _, dt := range t.ChildrenNamed(c, "direction-type") {
					if r := t.FirstChild(dt, "rehearsal"); r != tree.Nil {
						e.Kind, e.Text = KindRehearsalMark, innerText(t, r)
					} else if e.Kind == KindOther && t.FirstChild(dt, "segno") != tree.Nil {
						e.Kind, e.Text = KindLabel, "segno"
					} else if e.Kind == KindOther && t.FirstChild(dt, "coda") != tree.Nil {
						e.Kind, e.Text = KindLabel, "coda"
					}
				}
				if snd := t.FirstChild(c, "sound"); snd != tree.Nil {
					mx.sound(t, snd, &e)
				}
			case "sound":
				mx.sound(t, c, &e)
			case "barline":
				e.Pinned = true
				if rep := t.FirstChild(c, "repeat"); rep != tree.Nil {
					switch dir, _ := t.Attr(rep, "direction"); dir {
					case "forward":
						e.Kind = KindRepeatStart
						m.RepeatStart = true
					case "backward":
						times, _ := t.Attr(rep, "times")
						e.Kind, e.Count = KindRepeatEnd, repeatCount(times)
						m.RepeatEnd = e.Count
					}
				}
			case "print":
				e.Pinned = true
			}
			steps = append(steps, elementStep(e))
		}
		m.Divisions = divisions
		elems, furthest := d.layout(steps, where)
		m.Length = timeSig
		if implicit, _ := t.Attr(mh, "implicit"); implicit == "yes" && furthest.Greater(rational.Zero) {
			m.LenOverride = furthest
			m.Length = furthest
		}
		for _, e := range elems {
			for len(m.Voices) <= e.Voice {
				m.Voices = append(m.Voices, &Voice{Index: len(m.Voices), Node: tree.Nil})
			}
			v := m.Voices[e.Voice]
			v.Elements = append(v.Elements, e)
			m.collect(e)
		}
		s.Measures = append(s.Measures, m)
	}
	mx.boundJumps(s)
}

// toCodaPrefix marks the label of a measure carrying sound@tocoda.
const toCodaPrefix = "tocoda:"

func (musicXML) sound(t *tree.Tree, snd tree.Handle, e *Element) {
	if v, ok := t.Attr(snd, "tempo"); ok {
		if bpm, err := strconv.ParseFloat(v, 64); err == nil && bpm > 0 {
			e.Tempo = bpm / 60
			if e.Kind == KindOther {
				e.Kind = KindTempo
			}
		}
	}
	if e.Kind == KindRehearsalMark {
		return
	}
	if v, ok := t.Attr(snd, "dalsegno"); ok {
		e.Kind, e.Jump = KindJump, Jump{Target: v}
	} else if v, _ := t.Attr(snd, "dacapo"); v == "yes" {
		e.Kind, e.Jump = KindJump, Jump{Target: "start"}
	} else if v, ok := t.Attr(snd, "tocoda"); ok {
		e.Kind, e.Text = KindLabel, toCodaPrefix+v
	} else if v, ok := t.Attr(snd, "segno"); ok {
		e.Kind, e.Text = KindLabel, v
	} else if v, ok := t.Attr(snd, "coda"); ok {
		e.Kind, e.Text = KindLabel, v
	} else if _, ok := t.Attr(snd, "fine"); ok {
		e.Kind, e.Text = KindLabel, "fine"
	}
}

// boundJumps gives D.C. and D.S. their end: a To Coda sign plays until that
// measure and continues at the coda it names, otherwise Fine ends playback.
func (musicXML) boundJumps(s *Staff) {
	fine, toCoda := false, ""
	for _, m := range s.Measures {
		for _, l := range m.Labels {
			if l == "fine" {
				fine = true
			} else if toCoda == "" && strings.HasPrefix(l, toCodaPrefix) {
				toCoda = l
			}
		}
	}
	for _, m := range s.Measures {
		for i := range m.Jumps {
			j := &m.Jumps[i]
			switch {
			case toCoda != "":
				j.PlayUntil, j.ContinueAt = toCoda, strings.TrimPrefix(toCoda, toCodaPrefix)
			case fine:
				j.PlayUntil = "fine"
			}
		}
	}
}

func wholeToDivisions(r rational.Rational, divisions int) (int, bool) {
	x := r.Mul(rational.Int(int64(4 * divisions)))
	if x.Den() != 1 {
		return int(math.Round(x.Float64())), false
	}
	return int(x.Num()), true
}

func measureDivisions(m *Measure) int {
	if m.Divisions < 1 {
		return 1
	}
	return m.Divisions
}

// divisionsScale is the smallest factor that makes every position and duration in
// voices a whole number of divisions once each measure's divisions is multiplied by it.
func divisionsScale(src []*Measure, voices [][][]Element) int64 {
	k := int64(1)
	for i, m := range src {
		quarter := rational.Int(int64(4 * measureDivisions(m)))
		for _, list := range voices[i] {
			for _, e := range list {
				for _, x := range []rational.Rational{e.Position, e.Nominal, e.Duration} {
					if q := x.Mul(quarter); q.IsFinite() {
						k = util.LCM(k, q.Den())
					}
				}
			}
		}
	}
	return k
}

type xmlVoiceWriter struct {
	t         *tree.Tree
	children  *[]tree.Handle
	divisions int
	// scale multiplies the <divisions> of copied <attributes>
	scale int
	// empty keeps the voice numbers as they are
	voice string
}

func (w *xmlVoiceWriter) advance(delta rational.Rational, _ rational.Rational) {
	name := "forward"
	if delta.IsNegative() {
		name = "backup"
	}
	n, _ := wholeToDivisions(delta.Magnitude(), w.divisions)
	if n == 0 {
		return
	}
	h := w.t.NewNode(name)
	w.t.Append(h, w.t.NewTextNode("duration", strconv.Itoa(n)))
	*w.children = append(*w.children, h)
}

func (w *xmlVoiceWriter) element(e Element) {
	c := w.t.Clone(e.Node)
	if e.Sounding() && !e.Nominal.IsZero() && w.t.FirstChild(c, "duration") != tree.Nil {
		if n, ok := wholeToDivisions(e.Nominal, w.divisions); ok {
			w.t.SetChildText(c, "duration", strconv.Itoa(n))
		}
	}
	if w.scale > 1 && w.t.Name(c) == "attributes" {
		if dv, err := childInt(w.t, c, "divisions"); err == nil {
			w.t.SetChildText(c, "divisions", strconv.Itoa(dv*w.scale))
		}
	}
	if w.voice != "" && (e.Sounding() || w.t.FirstChild(c, "voice") != tree.Nil) {
		w.t.SetChildText(c, "voice", w.voice)
	}
	*w.children = append(*w.children, c)
}

// rewriteMeasures writes a whole part. When the elements come from a part with finer
// divisions, every divisions value of the part is multiplied by the same factor so
// inherited values stay consistent from measure to measure.
func (mx musicXML) rewriteMeasures(d *Document, targets []tree.Handle, src []*Measure, voices [][][]Element, renumber bool) {
	if len(targets) == 0 {
		return
	}
	scale := int(divisionsScale(src, voices))
	for i, target := range targets {
		mx.rewriteMeasure(d, target, src[i], voices[i], renumber, scale)
	}
	if scale > 1 {
		t := d.Tree
		first := targets[0]
		for _, a := range t.ChildrenNamed(first, "attributes") {
			if t.FirstChild(a, "divisions") != tree.Nil {
				return
			}
		}
		attrs := t.NewNode("attributes")
		t.Append(attrs, t.NewTextNode("divisions", strconv.Itoa(measureDivisions(src[0])*scale)))
		t.InsertAt(first, 0, attrs)
	}
}

func (musicXML) rewriteMeasure(d *Document, target tree.Handle, src *Measure, voices [][]Element, renumber bool, scale int) {
	var children []tree.Handle
	w := &xmlVoiceWriter{t: d.Tree, children: &children, divisions: measureDivisions(src) * scale, scale: scale}
	cursor := rational.Zero
	for k, list := range voices {
		w.voice = ""
		if renumber {
			w.voice = strconv.Itoa(k + 1)
		}
		cursor = emitVoice(list, cursor, w)
	}
	d.Tree.SetChildren(target, children)
}

func (mx musicXML) removeVoice(d *Document, m *Measure, voice int) {
	var lists [][]Element
	for _, v := range m.Voices {
		if v.Index != voice {
			lists = append(lists, v.Elements)
		}
	}
	mx.rewriteMeasure(d, m.Node, m, lists, false, 1)
}

func idPrefix(id string) string {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == 0 {
		return "P"
	}
	return id[:i]
}

// remapID also rewrites derived ids such as "P1-I1".
func remapID(id string, mapping map[string]string) (string, bool) {
	if n, ok := mapping[id]; ok {
		return n, true
	}
	best := ""
	for old := range mapping {
		if strings.HasPrefix(id, old+"-") && len(old) > len(best) {
			best = old
		}
	}
	if best == "" {
		return id, false
	}
	return mapping[best] + strings.TrimPrefix(id, best), true
}

func retag(t *tree.Tree, h tree.Handle, mapping map[string]string) {
	if id, ok := t.Attr(h, "id"); ok {
		if n, ok := remapID(id, mapping); ok {
			t.SetAttr(h, "id", n)
		}
	}
	for _, c := range t.Children(h) {
		retag(t, c, mapping)
	}
}

func (mx musicXML) duplicatePart(d *Document, p *Part) error {
	t := d.Tree
	partList := t.FirstChild(t.Root, "part-list")
	newID := idPrefix(p.ID) + strconv.Itoa(maxNumericID(d.Staffs)+1)
	mapping := map[string]string{p.ID: newID}

	nsp := t.Clone(p.Node)
	retag(t, nsp, mapping)
	t.InsertAfter(partList, p.Node, nsp)

	staff := d.StaffOf(p)
	np := t.Clone(staff.Node)
	retag(t, np, mapping)
	t.InsertAfter(t.Root, staff.Node, np)
	mx.renumber(d)
	return nil
}

// renumber gives parts ids P1..Pn in part-list order, along with the instrument ids
// derived from them, and puts <part> elements in that order.
func (musicXML) renumber(d *Document) {
	t := d.Tree
	partList := t.FirstChild(t.Root, "part-list")
	scoreParts := t.ChildrenNamed(partList, "score-part")
	if len(scoreParts) == 0 {
		return
	}
	first, _ := t.Attr(scoreParts[0], "id")
	prefix := idPrefix(first)
	mapping := map[string]string{}
	order := map[string]int{}
	for i, sp := range scoreParts {
		old, _ := t.Attr(sp, "id")
		mapping[old] = prefix + strconv.Itoa(i+1)
		order[mapping[old]] = i
	}
	for _, sp := range scoreParts {
		retag(t, sp, mapping)
	}
	parts := t.ChildrenNamed(t.Root, "part")
	for _, ph := range parts {
		// also the <instrument id> of every note
		retag(t, ph, mapping)
	}
	slices.SortStableFunc(parts, func(x, y tree.Handle) bool {
		a, _ := t.Attr(x, "id")
		b, _ := t.Attr(y, "id")
		return order[a] < order[b]
	})
	var rebuilt []tree.Handle
	inserted := false
	for _, c := range t.Children(t.Root) {
		if t.Name(c) == "part" {
			if !inserted {
				rebuilt = append(rebuilt, parts...)
				inserted = true
			}
			continue
		}
		rebuilt = append(rebuilt, c)
	}
	t.SetChildren(t.Root, rebuilt)
}

func (musicXML) setPartName(d *Document, p *Part, name model.PartName) {
	t := d.Tree
	setPlainText(t, p.Node, "part-name", name.Long)
	abbr := t.FirstChild(p.Node, "part-abbreviation")
	if abbr == tree.Nil {
		abbr = t.NewNode("part-abbreviation")
		t.InsertAfter(p.Node, t.FirstChild(p.Node, "part-name"), abbr)
	}
	t.SetText(abbr, name.Short)
	t.SetChildren(abbr, nil)
	for field, text := range map[string]string{"part-name-display": name.Long, "part-abbreviation-display": name.Short} {
		if dt := t.Find(p.Node, field, "display-text"); dt != tree.Nil {
			t.SetText(dt, text)
		}
	}
	if in := t.Find(p.Node, "score-instrument", "instrument-name"); in != tree.Nil {
		t.SetText(in, name.Long)
	}
}

func (musicXML) setPartVolume(d *Document, p *Part, volume float64) {
	t := d.Tree
	mi := t.FirstChild(p.Node, "midi-instrument")
	if mi == tree.Nil {
		mi = t.NewNode("midi-instrument")
		id := p.ID + "-I1"
		if si := t.FirstChild(p.Node, "score-instrument"); si != tree.Nil {
			if v, ok := t.Attr(si, "id"); ok {
				id = v
			}
		}
		t.SetAttr(mi, "id", id)
		t.Append(p.Node, mi)
	}
	text := strconv.FormatFloat(volume*100, 'f', -1, 64)
	if vol := t.FirstChild(mi, "volume"); vol != tree.Nil {
		t.SetText(vol, text)
		return
	}
	vol := t.NewTextNode("volume", text)
	if pan := t.FirstChild(mi, "pan"); pan != tree.Nil {
		t.InsertAt(mi, t.IndexOf(mi, pan), vol)
		return
	}
	t.Append(mi, vol)
}

func (musicXML) reduceDynamics(d *Document, velocity int) {
	t := d.Tree
	value := strconv.Itoa(velocity)
	for _, dir := range t.Descendants(t.Root, "direction") {
		hasDynamics := false
		for _, dt := range t.ChildrenNamed(dir, "direction-type") {
			if t.FirstChild(dt, "dynamics") != tree.Nil {
				hasDynamics = true
			}
		}
		if hasDynamics && t.FirstChild(dir, "sound") == tree.Nil {
			snd := t.NewNode("sound")
			t.SetAttr(snd, "dynamics", value)
			t.Append(dir, snd)
		}
	}
	for _, snd := range t.Descendants(t.Root, "sound") {
		if _, ok := t.Attr(snd, "dynamics"); ok {
			t.SetAttr(snd, "dynamics", value)
		}
	}
}

func (musicXML) extractRange(d *Document, s *Staff, first int, last int) {
	t := d.Tree
	kept := s.Measures[first-1].Node
	prefix := s.Measures[:first-1]

	if t.FirstChild(kept, "print") == tree.Nil {
		if pr := lastChild(t, prefix, "print", nil); pr != tree.Nil {
			t.InsertAt(kept, 0, t.Clone(pr))
		}
	}

	merged := map[string]tree.Handle{}
	for _, m := range prefix {
		for _, a := range t.ChildrenNamed(m.Node, "attributes") {
			for _, c := range t.Children(a) {
				merged[t.Name(c)] = c
			}
		}
	}
	delete(merged, "measure-style")
	attrs := t.FirstChild(kept, "attributes")
	if len(merged) > 0 {
		if attrs == tree.Nil {
			attrs = t.NewNode("attributes")
			at := 0
			if pr := t.FirstChild(kept, "print"); pr != tree.Nil {
				at = t.IndexOf(kept, pr) + 1
			}
			t.InsertAt(kept, at, attrs)
		}
		var rebuilt []tree.Handle
		known := map[string]bool{}
		for _, name := range attributeOrder {
			known[name] = true
			own := t.ChildrenNamed(attrs, name)
			if len(own) > 0 {
				rebuilt = append(rebuilt, own...)
			} else if h, ok := merged[name]; ok {
				rebuilt = append(rebuilt, t.Clone(h))
			}
		}
		for _, c := range t.Children(attrs) {
			if !known[t.Name(c)] {
				rebuilt = append(rebuilt, c)
			}
		}
		t.SetChildren(attrs, rebuilt)
	}

	hasTempo := func(h tree.Handle) bool {
		snd := t.FirstChild(h, "sound")
		_, ok := t.Attr(snd, "tempo")
		return ok
	}
	if lastChild(t, s.Measures[first-1:first], "direction", hasTempo) == tree.Nil {
		if dir := lastChild(t, prefix, "direction", hasTempo); dir != tree.Nil {
			at := 0
			if attrs != tree.Nil {
				at = t.IndexOf(kept, attrs) + 1
			}
			t.InsertAt(kept, at, t.Clone(dir))
		}
	}

	n := 1
	for i, m := range s.Measures {
		if i < first-1 || i > last-1 {
			t.Remove(s.Node, m.Node)
			continue
		}
		t.SetAttr(m.Node, "number", strconv.Itoa(n))
		n++
	}
}

func lastChild(t *tree.Tree, measures []*Measure, name string, match func(tree.Handle) bool) tree.Handle {
	for i := len(measures) - 1; i >= 0; i-- {
		kids := t.ChildrenNamed(measures[i].Node, name)
		for j := len(kids) - 1; j >= 0; j-- {
			if match == nil || match(kids[j]) {
				return kids[j]
			}
		}
	}
	return tree.Nil
}
