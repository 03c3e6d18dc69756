package model

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

const (
	StructuralMismatch     ftag.Kind = "STRUCTURAL_MISMATCH"
	MissingNamedPart       ftag.Kind = "MISSING_NAMED_PART"
	MissingStaff           ftag.Kind = "MISSING_STAFF"
	MalformedElement       ftag.Kind = "MALFORMED_ELEMENT"
	UnbalancedTuplet       ftag.Kind = "UNBALANCED_TUPLET"
	AmbiguousRepeatNesting ftag.Kind = "AMBIGUOUS_REPEAT_NESTING"
	UnknownJumpTarget      ftag.Kind = "UNKNOWN_JUMP_TARGET"
	UnsupportedDocument    ftag.Kind = "UNSUPPORTED_DOCUMENT"
	InvalidRange           ftag.Kind = "INVALID_RANGE"
)

// Fail builds a tagged error. msg is the internal message, desc the one shown to users.
func Fail(kind ftag.Kind, msg string, desc string) error {
	return fault.New(msg, ftag.With(kind), fmsg.WithDesc(msg, desc))
}

func KindOf(err error) ftag.Kind {
	return ftag.Get(err)
}
