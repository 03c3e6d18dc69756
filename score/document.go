// Package score reads MuseScore (.mscx) and MusicXML (score-partwise) documents into
// parts, staffs, measures and positioned voice elements, and edits them in place.
package score

import (
	"fmt"
	"unicode"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	"github.com/jsphweid/choirscore/logging"
	"github.com/jsphweid/choirscore/model"
	"github.com/jsphweid/choirscore/rational"
	"github.com/jsphweid/choirscore/tree"
)

type Dialect string

const (
	MuseScore Dialect = "musescore"
	MusicXML  Dialect = "musicxml"
)

type Part struct {
	ID        string
	Node      tree.Handle
	Name      string
	LongName  string
	ShortName string
	// 0..1
	Volume   float64
	StaffIDs []string
}

type Staff struct {
	ID       string
	Node     tree.Handle
	Measures []*Measure
}

type Voice struct {
	Index int
	// Nil for MusicXML, where voices are interleaved in the measure.
	Node     tree.Handle
	Elements []Element
}

type Measure struct {
	Node   tree.Handle
	Index  int
	Number string
	// Length is the explicit override if any, else the active time signature.
	Length      rational.Rational
	LenOverride rational.Rational
	// TimeSig is zero unless the measure sets a time signature.
	TimeSig     rational.Rational
	RepeatStart bool
	// RepeatEnd is the total play count, 0 when the measure ends no repeat.
	RepeatEnd int
	Labels    []string
	Jumps     []Jump
	Voices    []*Voice
	// MusicXML divisions per quarter note active in this measure.
	Divisions int
}

func (m *Measure) Voice(i int) *Voice {
	if i < 0 || i >= len(m.Voices) {
		return nil
	}
	return m.Voices[i]
}

// VoiceCount is the highest voice index holding a note or rest, plus one.
func (s *Staff) VoiceCount() int {
	count := 0
	for _, m := range s.Measures {
		for _, v := range m.Voices {
			for _, e := range v.Elements {
				if e.Sounding() && v.Index+1 > count {
					count = v.Index + 1
				}
			}
		}
	}
	return count
}

type dialect interface {
	load(d *Document) error
	setPartName(d *Document, p *Part, name model.PartName)
	setPartVolume(d *Document, p *Part, volume float64)
	// duplicatePart inserts a copy of p (with only its first staff) after p and
	// renumbers staff identifiers across the document.
	duplicatePart(d *Document, p *Part) error
	// rewriteMeasures replaces the content of each target with voices[i], laid out like src[i].
	rewriteMeasures(d *Document, targets []tree.Handle, src []*Measure, voices [][][]Element, renumber bool)
	removeVoice(d *Document, m *Measure, voice int)
	reduceDynamics(d *Document, velocity int)
	extractRange(d *Document, s *Staff, first int, last int)
}

type Document struct {
	Tree        *tree.Tree
	Dialect     Dialect
	Parts       []*Part
	Staffs      []*Staff
	Diagnostics []error

	log  *logging.Logger
	impl dialect
}

func Load(t *tree.Tree, log *logging.Logger) (*Document, error) {
	d := &Document{Tree: t, log: log}
	switch t.Name(t.Root) {
	case "museScore":
		d.Dialect, d.impl = MuseScore, museScore{}
	case "score-partwise":
		d.Dialect, d.impl = MusicXML, musicXML{}
	default:
		return nil, model.Fail(model.UnsupportedDocument,
			fmt.Sprintf("unsupported root element <%s>", t.Name(t.Root)),
			"Only MuseScore and partwise MusicXML scores are supported")
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload rebuilds parts and staffs from the tree after an edit.
func (d *Document) Reload() error {
	d.Parts, d.Staffs, d.Diagnostics = nil, nil, nil
	return d.impl.load(d)
}

func (d *Document) Logger() *logging.Logger {
	return d.log
}

func (d *Document) report(kind ftag.Kind, msg string) {
	d.log.Warnf("%s: %s", kind, msg)
	d.Diagnostics = append(d.Diagnostics, fault.New(msg, ftag.With(kind)))
}

func (d *Document) Staff(id string) *Staff {
	for _, s := range d.Staffs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// StaffOf returns the first staff bound to p.
func (d *Document) StaffOf(p *Part) *Staff {
	if p == nil {
		return nil
	}
	for _, id := range p.StaffIDs {
		if s := d.Staff(id); s != nil {
			return s
		}
	}
	return nil
}

// MainStaff is the first staff of the first part, else the first staff.
func (d *Document) MainStaff() (*Staff, error) {
	if len(d.Parts) > 0 {
		if s := d.StaffOf(d.Parts[0]); s != nil {
			return s, nil
		}
	}
	if len(d.Staffs) > 0 {
		return d.Staffs[0], nil
	}
	return nil, model.Fail(model.MissingStaff, "document has no staff", "The score contains no staff")
}

func (d *Document) FindPart(match func(p *Part) bool) *Part {
	for _, p := range d.Parts {
		if match(p) {
			return p
		}
	}
	return nil
}

func (d *Document) PartIndex(p *Part) int {
	for i, q := range d.Parts {
		if q == p || (p != nil && q.Node == p.Node) {
			return i
		}
	}
	return -1
}

func (d *Document) SetPartName(p *Part, name model.PartName) {
	if name.Short == "" {
		name.Short = Abbreviate(name.Long)
	}
	d.impl.setPartName(d, p, name)
	p.Name, p.LongName, p.ShortName = name.Long, name.Long, name.Short
}

func (d *Document) SetPartVolume(p *Part, volume float64) {
	d.impl.setPartVolume(d, p, volume)
	p.Volume = volume
}

// DuplicatePart copies p right after itself and returns the copy.
func (d *Document) DuplicatePart(p *Part) (*Part, error) {
	i := d.PartIndex(p)
	if i < 0 {
		return nil, model.Fail(model.MissingNamedPart, "part is not in this document", "Part not found")
	}
	if d.StaffOf(p) == nil {
		return nil, model.Fail(model.MissingStaff, fmt.Sprintf("part %q has no staff", p.Name), "The part has no staff")
	}
	if err := d.impl.duplicatePart(d, p); err != nil {
		return nil, err
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d.Parts[i+1], nil
}

// RewriteMeasures replaces the content of every target (a measure node shaped like
// src[i]) with voices[i]. The targets are the measures of one part, in order. renumber
// sets the voice of every written element to its list index.
func (d *Document) RewriteMeasures(targets []tree.Handle, src []*Measure, voices [][][]Element, renumber bool) {
	d.impl.rewriteMeasures(d, targets, src, voices, renumber)
}

// RewriteMeasure is RewriteMeasures for a part of one measure.
func (d *Document) RewriteMeasure(target tree.Handle, src *Measure, voices [][]Element, renumber bool) {
	d.RewriteMeasures([]tree.Handle{target}, []*Measure{src}, [][][]Element{voices}, renumber)
}

func (d *Document) RemoveVoice(m *Measure, voice int) {
	if m.Voice(voice) == nil {
		return
	}
	d.impl.removeVoice(d, m, voice)
}

// ReduceDynamics sets every dynamic marking to the same velocity.
func (d *Document) ReduceDynamics(velocity int) {
	d.impl.reduceDynamics(d, velocity)
}

// Abbreviate keeps the upper case letters, each followed by a dot: "Mezzo-Sopraan" is "M.S.".
func Abbreviate(name string) string {
	var res []rune
	for _, r := range name {
		if unicode.IsUpper(r) {
			res = append(res, r, '.')
		}
	}
	return string(res)
}
