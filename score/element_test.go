package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/choirscore/rational"
)

func span(pos, dur rational.Rational) Element {
	return Element{Kind: KindNote, Position: pos, Duration: dur}
}

func TestOverlaps(t *testing.T) {
	assert := assert.New(t)
	q := rational.New(1, 4)
	assert.True(span(rational.Zero, q).Overlaps(span(rational.New(1, 8), q)))
	assert.False(span(rational.Zero, q).Overlaps(span(q, q)))
	assert.True(span(q, rational.Zero).Overlaps(span(q, rational.Zero)))
	assert.False(span(q, rational.Zero).Overlaps(span(rational.Zero, rational.Zero)))
	assert.False(span(rational.Zero, rational.One).Overlaps(span(q, rational.Zero)))
}

// A dynamic or text sitting inside a held note must not knock the note out of
// the base voice, in either argument order.
func TestOverlapsZeroLengthInsideNote(t *testing.T) {
	assert := assert.New(t)
	whole := span(rational.Zero, rational.One)
	for _, at := range []rational.Rational{rational.Zero, rational.New(1, 4), rational.New(3, 4)} {
		mark := span(at, rational.Zero)
		assert.False(whole.Overlaps(mark), "mark at %s", at)
		assert.False(mark.Overlaps(whole), "mark at %s", at)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "tuplet-end", KindTupletEnd.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
