package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsphweid/choirscore/constants"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/tree"
)

type museScore struct{}

var durationTypes = map[string]rational.Rational{
	"long":    rational.Int(4),
	"breve":   rational.Int(2),
	"whole":   rational.One,
	"half":    rational.New(1, 2),
	"quarter": rational.New(1, 4),
	"eighth":  rational.New(1, 8),
	"16th":    rational.New(1, 16),
	"32nd":    rational.New(1, 32),
	"64th":    rational.New(1, 64),
	"128th":   rational.New(1, 128),
	"256th":   rational.New(1, 256),
}

var graceMarks = []string{
	"acciaccatura", "appoggiatura", "grace4", "grace8", "grace16", "grace32",
	"grace8after", "grace16after", "grace32after",
}

func (museScore) score(d *Document) tree.Handle {
	return d.Tree.FirstChild(d.Tree.Root, "Score")
}

func (ms museScore) load(d *Document) error {
	t := d.Tree
	score := ms.score(d)
	if score == tree.Nil {
		return model.Fail(model.UnsupportedDocument, "museScore document without <Score>", "The MuseScore file has no score")
	}
	for i, ph := range t.ChildrenNamed(score, "Part") {
		p := &Part{Node: ph, ID: strconv.Itoa(i + 1)}
		for _, ref := range t.ChildrenNamed(ph, "Staff") {
			id, _ := t.Attr(ref, "id")
			p.StaffIDs = append(p.StaffIDs, id)
		}
		if len(p.StaffIDs) > 0 {
			p.ID = p.StaffIDs[0]
		}
		inst := t.FirstChild(ph, "Instrument")
		p.LongName = innerText(t, t.FirstChild(inst, "longName"))
		p.ShortName = innerText(t, t.FirstChild(inst, "shortName"))
		p.Name = innerText(t, t.FirstChild(ph, "trackName"))
		if p.Name == "" {
			p.Name = innerText(t, t.FirstChild(inst, "trackName"))
		}
		if p.Name == "" {
			p.Name = p.LongName
		}
		p.Volume = ms.volume(t, inst)
		d.Parts = append(d.Parts, p)
	}
	for _, sh := range t.ChildrenNamed(score, "Staff") {
		id, _ := t.Attr(sh, "id")
		s := &Staff{ID: id, Node: sh}
		ms.loadStaff(d, s)
		d.Staffs = append(d.Staffs, s)
	}
	return nil
}

func (museScore) volume(t *tree.Tree, inst tree.Handle) float64 {
	for _, ch := range t.ChildrenNamed(inst, "Channel") {
		for _, c := range t.ChildrenNamed(ch, "controller") {
			if ctrl, _ := t.Attr(c, "ctrl"); ctrl != "7" {
				continue
			}
			v, _ := t.Attr(c, "value")
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f / 127
			}
		}
	}
	return 100.0 / 127
}

func (ms museScore) loadStaff(d *Document, s *Staff) {
	t := d.Tree
	timeSig := rational.New(4, 4)
	for i, mh := range t.ChildrenNamed(s.Node, "Measure") {
		m := &Measure{Node: mh, Index: i, Number: strconv.Itoa(i + 1)}
		if l, ok := t.Attr(mh, "len"); ok {
			r, err := rational.Parse(l)
			if err == nil && r.Greater(rational.Zero) {
				m.LenOverride = r
			} else {
				d.report(model.MalformedElement, fmt.Sprintf("staff %s measure %d: bad len %q", s.ID, i+1, l))
			}
		}
		voices := t.ChildrenNamed(mh, "voice")
		if len(voices) > 0 {
			if ts := t.FirstChild(voices[0], "TimeSig"); ts != tree.Nil {
				if r, ok := ms.timeSig(t, ts); ok {
					timeSig, m.TimeSig = r, r
				}
			}
		}
		m.Length = timeSig
		if !m.LenOverride.IsZero() {
			m.Length = m.LenOverride
		}

		for _, c := range t.Children(mh) {
			switch t.Name(c) {
			case "startRepeat":
				m.RepeatStart = true
			case "endRepeat":
				m.RepeatEnd = repeatCount(t.Text(c))
			case "Marker", "Jump":
				st := ms.classify(d, c, m, 0, "")
				m.collect(st.element)
			}
		}

		for vi, vh := range voices {
			where := fmt.Sprintf("staff %s measure %d voice %d", s.ID, i+1, vi+1)
			var steps []step
			for _, c := range t.Children(vh) {
				steps = append(steps, ms.classify(d, c, m, vi, where))
			}
			elems, _ := d.layout(steps, where)
			for _, e := range elems {
				m.collect(e)
			}
			m.Voices = append(m.Voices, &Voice{Index: vi, Node: vh, Elements: elems})
		}
		s.Measures = append(s.Measures, m)
	}
}

func (m *Measure) collect(e Element) {
	switch e.Kind {
	case KindLabel:
		m.Labels = append(m.Labels, e.Text)
	case KindJump:
		m.Jumps = append(m.Jumps, e.Jump)
	}
}

func repeatCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return constants.DefaultRepeatCount
	}
	return n
}

func (museScore) timeSig(t *tree.Tree, h tree.Handle) (rational.Rational, bool) {
	n, err1 := childInt(t, h, "sigN")
	dn, err2 := childInt(t, h, "sigD")
	if err1 != nil || err2 != nil || n <= 0 || dn <= 0 {
		return rational.Zero, false
	}
	return rational.New(int64(n), int64(dn)), true
}

func (ms museScore) classify(d *Document, h tree.Handle, m *Measure, voice int, where string) step {
	t := d.Tree
	e := Element{Node: h, Voice: voice}
	malformed := func(msg string) {
		e.Malformed = true
		d.report(model.MalformedElement, fmt.Sprintf("%s: <%s> %s", where, t.Name(h), msg))
	}
	switch t.Name(h) {
	case "Chord", "Rest":
		e.Kind = KindNote
		if t.Name(h) == "Rest" {
			e.Kind = KindRest
		}
		nominal, err := ms.duration(t, h, m)
		if err != nil {
			malformed(err.Error())
		}
		e.Nominal = nominal
		for _, g := range graceMarks {
			if t.FirstChild(h, g) != tree.Nil {
				e.Nominal = rational.Zero
			}
		}
	case "location":
		fr, ok := t.ChildText(h, "fractions")
		if !ok {
			return advanceStep(rational.Zero)
		}
		r, err := rational.Parse(fr)
		if err != nil {
			malformed(err.Error())
			return advanceStep(rational.Zero)
		}
		return advanceStep(r)
	case "Tuplet":
		e.Kind = KindTupletStart
		e.Ratio = rational.One
		normal, err1 := childInt(t, h, "normalNotes")
		actual, err2 := childInt(t, h, "actualNotes")
		if err1 != nil || err2 != nil || normal <= 0 || actual <= 0 {
			malformed("without usable normalNotes/actualNotes")
		} else {
			e.Ratio = rational.New(int64(normal), int64(actual))
		}
	case "endTuplet":
		e.Kind = KindTupletEnd
	case "Tempo":
		v, err := childFloat(t, h, "tempo")
		if err != nil || v <= 0 {
			malformed("without a positive tempo")
			break
		}
		e.Kind, e.Tempo = KindTempo, v
	case "RehearsalMark":
		e.Kind = KindRehearsalMark
		e.Text = innerText(t, t.FirstChild(h, "text"))
		if e.Text == "" {
			e.Text = innerText(t, h)
		}
	case "Breath":
		e.Kind = KindBreath
		if v, err := childFloat(t, h, "pause"); err == nil {
			e.Pause = v
		}
	case "Fermata":
		e.Kind = KindFermataEnd
		if v, err := childFloat(t, h, "timeStretch"); err == nil && v > 0 {
			e.Kind, e.Stretch = KindFermataStart, v
		}
	case "TimeSig":
		e.Pinned = true
		if r, ok := ms.timeSig(t, h); ok {
			e.Kind, e.TimeSig = KindTimeSignature, r
		}
	case "KeySig", "Clef":
		e.Pinned = true
	case "Marker":
		if label, ok := t.ChildText(h, "label"); ok && label != "" {
			e.Kind, e.Text = KindLabel, label
		}
	case "Jump":
		e.Kind = KindJump
		e.Jump.Target, _ = t.ChildText(h, "jumpTo")
		e.Jump.PlayUntil, _ = t.ChildText(h, "playUntil")
		e.Jump.ContinueAt, _ = t.ChildText(h, "continueAt")
	}
	return elementStep(e)
}

// duration is the written value: an explicit <duration> wins over <durationType>,
// dots extend the type by halves.
func (museScore) duration(t *tree.Tree, h tree.Handle, m *Measure) (rational.Rational, error) {
	if s, ok := t.ChildText(h, "duration"); ok {
		return rational.Parse(s)
	}
	typ, ok := t.ChildText(h, "durationType")
	if !ok {
		return rational.Zero, fmt.Errorf("without duration")
	}
	if typ == "measure" {
		return m.Length, nil
	}
	base, ok := durationTypes[typ]
	if !ok {
		return rational.Zero, fmt.Errorf("unknown durationType %q", typ)
	}
	res := base
	if dots, err := childInt(t, h, "dots"); err == nil {
		add := base
		for i := 0; i < dots; i++ {
			add = add.Mul(rational.New(1, 2))
			res = res.Add(add)
		}
	}
	return res, nil
}

type museVoiceWriter struct {
	t     *tree.Tree
	voice tree.Handle
}

func (w museVoiceWriter) advance(delta rational.Rational, scale rational.Rational) {
	declared := delta.Div(scale)
	loc := w.t.NewNode("location")
	w.t.Append(loc, w.t.NewTextNode("fractions", fmt.Sprintf("%d/%d", declared.Num(), declared.Den())))
	w.t.Append(w.voice, loc)
}

func (w museVoiceWriter) element(e Element) {
	w.t.Append(w.voice, w.t.Clone(e.Node))
}

func (ms museScore) rewriteMeasures(d *Document, targets []tree.Handle, src []*Measure, voices [][][]Element, renumber bool) {
	for i, target := range targets {
		ms.rewriteMeasure(d, target, src[i], voices[i], renumber)
	}
}

func (museScore) rewriteMeasure(d *Document, target tree.Handle, src *Measure, voices [][]Element, _ bool) {
	t := d.Tree
	old := t.ChildrenNamed(target, "voice")
	idx := len(t.Children(target))
	if len(old) > 0 {
		idx = t.IndexOf(target, old[0])
	}
	for _, v := range old {
		t.Remove(target, v)
	}
	for k, list := range voices {
		vh := t.NewNode("voice")
		emitVoice(list, rational.Zero, museVoiceWriter{t: t, voice: vh})
		if k == 0 && len(list) == 0 {
			rest := t.NewNode("Rest")
			t.Append(rest, t.NewTextNode("durationType", "measure"))
			t.Append(rest, t.NewTextNode("duration", fmt.Sprintf("%d/%d", src.Length.Num(), src.Length.Den())))
			t.Append(vh, rest)
		}
		t.InsertAt(target, idx+k, vh)
	}
}

func (museScore) removeVoice(d *Document, m *Measure, voice int) {
	d.Tree.Remove(m.Node, m.Voices[voice].Node)
}

func (ms museScore) duplicatePart(d *Document, p *Part) error {
	t := d.Tree
	score := ms.score(d)
	staff := d.StaffOf(p)
	nextID := strconv.Itoa(maxNumericID(d.Staffs) + 1)

	np := t.Clone(p.Node)
	for i, ref := range t.ChildrenNamed(np, "Staff") {
		if i == 0 {
			t.SetAttr(ref, "id", nextID)
		} else {
			t.Remove(np, ref)
		}
	}
	t.InsertAfter(score, p.Node, np)

	ns := t.Clone(staff.Node)
	for _, c := range t.Children(ns) {
		switch t.Name(c) {
		case "VBox", "HBox", "TBox", "FBox":
			t.Remove(ns, c)
		}
	}
	t.SetAttr(ns, "id", nextID)
	last := staff.Node
	for _, id := range p.StaffIDs {
		if s := d.Staff(id); s != nil && t.IndexOf(score, s.Node) > t.IndexOf(score, last) {
			last = s.Node
		}
	}
	t.InsertAfter(score, last, ns)
	ms.renumber(d)
	return nil
}

// renumber gives staffs ids 1..n in part order.
func (ms museScore) renumber(d *Document) {
	t := d.Tree
	score := ms.score(d)
	mapping := map[string]string{}
	next := 1
	for _, ph := range t.ChildrenNamed(score, "Part") {
		for _, ref := range t.ChildrenNamed(ph, "Staff") {
			old, _ := t.Attr(ref, "id")
			id := strconv.Itoa(next)
			next++
			if _, seen := mapping[old]; !seen {
				mapping[old] = id
			}
			t.SetAttr(ref, "id", id)
		}
	}
	for _, sh := range t.ChildrenNamed(score, "Staff") {
		old, _ := t.Attr(sh, "id")
		if id, ok := mapping[old]; ok {
			t.SetAttr(sh, "id", id)
		}
	}
}

func (museScore) setPartName(d *Document, p *Part, name model.PartName) {
	t := d.Tree
	setPlainText(t, p.Node, "trackName", name.Long)
	inst := t.FirstChild(p.Node, "Instrument")
	if inst == tree.Nil {
		return
	}
	setPlainText(t, inst, "longName", name.Long)
	setPlainText(t, inst, "shortName", name.Short)
	setPlainText(t, inst, "trackName", name.Long)
}

func (museScore) setPartVolume(d *Document, p *Part, volume float64) {
	t := d.Tree
	inst := t.FirstChild(p.Node, "Instrument")
	if inst == tree.Nil {
		return
	}
	value := strconv.Itoa(int(math.Round(volume * 127)))
	channels := t.ChildrenNamed(inst, "Channel")
	if len(channels) == 0 {
		ch := t.NewNode("Channel")
		t.Append(inst, ch)
		channels = append(channels, ch)
	}
	for _, ch := range channels {
		ctrl := tree.Nil
		for _, c := range t.ChildrenNamed(ch, "controller") {
			if v, _ := t.Attr(c, "ctrl"); v == "7" {
				ctrl = c
				break
			}
		}
		if ctrl == tree.Nil {
			ctrl = t.NewNode("controller")
			t.SetAttr(ctrl, "ctrl", "7")
			t.Append(ch, ctrl)
		}
		t.SetAttr(ctrl, "value", value)
	}
}

func (ms museScore) reduceDynamics(d *Document, velocity int) {
	t := d.Tree
	for _, h := range t.Descendants(ms.score(d), "Dynamic") {
		t.SetChildText(h, "velocity", strconv.Itoa(velocity))
	}
}

// carried in this order to the front of the new first measure
var carriedMuseScore = []string{"Clef", "KeySig", "TimeSig", "Tempo"}

func (museScore) extractRange(d *Document, s *Staff, first int, last int) {
	t := d.Tree
	kept := s.Measures[first-1]
	if v := kept.Voice(0); v != nil {
		at := 0
		for _, name := range carriedMuseScore {
			if hasAtStart(t, v, name) {
				continue
			}
			if h := lastNamed(t, s.Measures[:first-1], name); h != tree.Nil {
				t.InsertAt(v.Node, at, t.Clone(h))
				at++
			}
		}
	}
	for i, m := range s.Measures {
		if i < first-1 || i > last-1 {
			t.Remove(s.Node, m.Node)
		}
	}
}

func hasAtStart(t *tree.Tree, v *Voice, name string) bool {
	for _, e := range v.Elements {
		if !e.Position.IsZero() {
			break
		}
		if t.Name(e.Node) == name {
			return true
		}
	}
	return false
}

func lastNamed(t *tree.Tree, measures []*Measure, name string) tree.Handle {
	for i := len(measures) - 1; i >= 0; i-- {
		v := measures[i].Voice(0)
		if v == nil {
			continue
		}
		for j := len(v.Elements) - 1; j >= 0; j-- {
			if t.Name(v.Elements[j].Node) == name {
				return v.Elements[j].Node
			}
		}
	}
	return tree.Nil
}
