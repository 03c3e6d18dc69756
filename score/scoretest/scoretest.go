// Package scoretest builds small MuseScore and MusicXML documents for tests.
package scoretest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsphweid/choirscore/score"
	"github.com/jsphweid/choirscore/tree"
)

type Part struct {
	Name     string
	Measures []string
}

// MuseScore lays out one staff per part, with staff ids 1..n.
func MuseScore(parts ...Part) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<museScore version="3.02"><Score><Division>480</Division>`)
	for i, p := range parts {
		fmt.Fprintf(&sb, `<Part><Staff id="%d"><StaffType group="pitched"/></Staff><trackName>%s</trackName>`+
			`<Instrument><longName>%s</longName><shortName>%s</shortName><trackName>%s</trackName>`+
			`<Channel><controller ctrl="7" value="100"/></Channel></Instrument></Part>`,
			i+1, p.Name, p.Name, score.Abbreviate(p.Name), p.Name)
	}
	for i, p := range parts {
		fmt.Fprintf(&sb, `<Staff id="%d">`, i+1)
		if i == 0 {
			sb.WriteString(`<VBox><Text><text>Title</text></Text></VBox>`)
		}
		sb.WriteString(strings.Join(p.Measures, ""))
		sb.WriteString(`</Staff>`)
	}
	sb.WriteString(`</Score></museScore>`)
	return sb.String()
}

func Measure(voices ...string) string {
	return Decorated("", voices...)
}

// Decorated puts measure level children such as "<startRepeat/>" before the voices.
func Decorated(extra string, voices ...string) string {
	var sb strings.Builder
	sb.WriteString("<Measure>" + extra)
	for _, v := range voices {
		sb.WriteString("<voice>" + v + "</voice>")
	}
	sb.WriteString("</Measure>")
	return sb.String()
}

func Chord(durationType string) string {
	return fmt.Sprintf(`<Chord><durationType>%s</durationType><Note><pitch>60</pitch><tpc>14</tpc></Note></Chord>`, durationType)
}

func DottedChord(durationType string, dots int) string {
	return fmt.Sprintf(`<Chord><dots>%d</dots><durationType>%s</durationType><Note><pitch>60</pitch><tpc>14</tpc></Note></Chord>`, dots, durationType)
}

func Rest(durationType string) string {
	return fmt.Sprintf(`<Rest><durationType>%s</durationType></Rest>`, durationType)
}

func DottedRest(durationType string, dots int) string {
	return fmt.Sprintf(`<Rest><dots>%d</dots><durationType>%s</durationType></Rest>`, dots, durationType)
}

func MeasureRest(length string) string {
	return fmt.Sprintf(`<Rest><durationType>measure</durationType><duration>%s</duration></Rest>`, length)
}

func TimeSig(n int, d int) string {
	return fmt.Sprintf(`<TimeSig><sigN>%d</sigN><sigD>%d</sigD></TimeSig>`, n, d)
}

// Tempo takes beats (quarter notes) per second.
func Tempo(bps float64) string {
	return fmt.Sprintf(`<Tempo><tempo>%g</tempo><text>♩ = %g</text></Tempo>`, bps, bps*60)
}

func Mark(text string) string {
	return fmt.Sprintf(`<RehearsalMark><text>%s</text></RehearsalMark>`, text)
}

func Breath(pause float64) string {
	return fmt.Sprintf(`<Breath><symbol>breathCommaAbove</symbol><pause>%g</pause></Breath>`, pause)
}

func Fermata(stretch float64) string {
	return fmt.Sprintf(`<Fermata><subtype>fermataAbove</subtype><timeStretch>%g</timeStretch></Fermata>`, stretch)
}

func Tuplet(normal int, actual int) string {
	return fmt.Sprintf(`<Tuplet><normalNotes>%d</normalNotes><actualNotes>%d</actualNotes><baseNote>eighth</baseNote></Tuplet>`, normal, actual)
}

const EndTuplet = `<endTuplet/>`

func Location(fraction string) string {
	return fmt.Sprintf(`<location><fractions>%s</fractions></location>`, fraction)
}

func Dynamic(subtype string, velocity int) string {
	return fmt.Sprintf(`<Dynamic><subtype>%s</subtype><velocity>%d</velocity></Dynamic>`, subtype, velocity)
}

func Marker(label string) string {
	return fmt.Sprintf(`<Marker><style>Repeat Text Left</style><text>%s</text><label>%s</label></Marker>`, label, label)
}

func JumpTo(target string, playUntil string, continueAt string) string {
	return fmt.Sprintf(`<Jump><text>D.S.</text><jumpTo>%s</jumpTo><playUntil>%s</playUntil><continueAt>%s</continueAt></Jump>`,
		target, playUntil, continueAt)
}

// MusicXML lays out one <part> per Part with ids P1..Pn.
func MusicXML(parts ...Part) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<score-partwise version="3.1"><part-list>`)
	for i, p := range parts {
		fmt.Fprintf(&sb, `<score-part id="P%d"><part-name>%s</part-name><part-abbreviation>%s</part-abbreviation>`+
			`<score-instrument id="P%d-I1"><instrument-name>%s</instrument-name></score-instrument>`+
			`<midi-instrument id="P%d-I1"><midi-channel>%d</midi-channel><volume>80</volume></midi-instrument></score-part>`,
			i+1, p.Name, score.Abbreviate(p.Name), i+1, p.Name, i+1, i+1)
	}
	sb.WriteString(`</part-list>`)
	for i, p := range parts {
		fmt.Fprintf(&sb, `<part id="P%d">`, i+1)
		for j, m := range p.Measures {
			fmt.Fprintf(&sb, `<measure number="%d">%s</measure>`, j+1, m)
		}
		sb.WriteString(`</part>`)
	}
	sb.WriteString(`</score-partwise>`)
	return sb.String()
}

func Attributes(divisions int, beats int, beatType int) string {
	return fmt.Sprintf(`<attributes><divisions>%d</divisions><key><fifths>0</fifths></key>`+
		`<time><beats>%d</beats><beat-type>%d</beat-type></time><clef><sign>G</sign><line>2</line></clef></attributes>`,
		divisions, beats, beatType)
}

func Note(duration int, voice int) string {
	return fmt.Sprintf(`<note><pitch><step>C</step><octave>4</octave></pitch><duration>%d</duration><voice>%d</voice></note>`, duration, voice)
}

// InstrumentNote refers to the instrument of the part with the given 1-based index.
func InstrumentNote(part int, duration int, voice int) string {
	return fmt.Sprintf(`<note><pitch><step>C</step><octave>4</octave></pitch><duration>%d</duration>`+
		`<instrument id="P%d-I1"/><voice>%d</voice></note>`, duration, part, voice)
}

func ChordNote(duration int, voice int) string {
	return fmt.Sprintf(`<note><chord/><pitch><step>E</step><octave>4</octave></pitch><duration>%d</duration><voice>%d</voice></note>`, duration, voice)
}

func NoteRest(duration int, voice int) string {
	return fmt.Sprintf(`<note><rest/><duration>%d</duration><voice>%d</voice></note>`, duration, voice)
}

func Backup(duration int) string {
	return fmt.Sprintf(`<backup><duration>%d</duration></backup>`, duration)
}

func Forward(duration int) string {
	return fmt.Sprintf(`<forward><duration>%d</duration></forward>`, duration)
}

func Rehearsal(text string) string {
	return fmt.Sprintf(`<direction placement="above"><direction-type><rehearsal>%s</rehearsal></direction-type></direction>`, text)
}

func SoundTempo(bpm float64) string {
	return fmt.Sprintf(`<direction><direction-type><metronome><beat-unit>quarter</beat-unit><per-minute>%g</per-minute></metronome></direction-type><sound tempo="%g"/></direction>`, bpm, bpm)
}

// Sound is a bare <sound> with the given attributes, such as `dacapo="yes"`.
func Sound(attrs string) string {
	return fmt.Sprintf(`<sound %s/>`, attrs)
}

func Segno(name string) string {
	return fmt.Sprintf(`<direction><direction-type><segno/></direction-type><sound segno="%s"/></direction>`, name)
}

func Coda(name string) string {
	return fmt.Sprintf(`<direction><direction-type><coda/></direction-type><sound coda="%s"/></direction>`, name)
}

func DynamicDirection(mark string, dynamics int) string {
	return fmt.Sprintf(`<direction><direction-type><dynamics><%s/></dynamics></direction-type><sound dynamics="%d"/></direction>`, mark, dynamics)
}

func RepeatBarline(location string, direction string, times int) string {
	extra := ""
	if times > 0 {
		extra = fmt.Sprintf(` times="%d"`, times)
	}
	return fmt.Sprintf(`<barline location="%s"><bar-style>heavy-light</bar-style><repeat direction="%s"%s/></barline>`, location, direction, extra)
}

func Decode(t testing.TB, xml string) *tree.Tree {
	t.Helper()
	tr, err := tree.Decode(strings.NewReader(xml))
	require.NoError(t, err)
	return tr
}

func Load(t testing.TB, xml string) *score.Document {
	t.Helper()
	doc, err := score.Load(Decode(t, xml), nil)
	require.NoError(t, err)
	return doc
}
