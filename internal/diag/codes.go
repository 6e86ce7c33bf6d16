package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Attribute item syntax (the nested mini-language)
	MetaInfo               Code = 1000
	MetaUnexpectedToken    Code = 1001
	MetaUnterminatedString Code = 1002
	MetaBadEscape          Code = 1003
	MetaExpectItem         Code = 1004
	MetaExpectValue        Code = 1005
	MetaUnclosedParen      Code = 1006
	MetaTrailingTokens     Code = 1007

	// Directive structure
	DirInfo                  Code = 2000
	DirEmptyOnClause         Code = 2001
	DirInvalidOnClause       Code = 2002
	DirExpectValue           Code = 2003
	DirRequiresValue         Code = 2004
	DirMatchesMultipleBounds Code = 2005
	DirMatchesMultipleSelf   Code = 2006
	DirMatchesMissingBound   Code = 2007
	DirMatchesMissingSelf    Code = 2008
	DirNotArity              Code = 2009

	// Format template validation
	TmplUnknownParam  Code = 3001
	TmplPositionalArg Code = 3002
	TmplUnclosedBrace Code = 3003
	TmplStrayBrace    Code = 3004

	// World loading
	WorldDuplicateTrait  Code = 4001
	WorldDuplicateType   Code = 4002
	WorldDuplicateParam  Code = 4003
	WorldUnknownTrait    Code = 4004
	WorldUnknownType     Code = 4005
	WorldBadResolution   Code = 4006
	WorldDirectiveForms  Code = 4007
	WorldMissingSelfArg  Code = 4008
	WorldUnknownParamArg Code = 4009

	// I/O
	IOLoadFileError Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	MetaInfo:               "Attribute syntax information",
	MetaUnexpectedToken:    "Unexpected token in attribute",
	MetaUnterminatedString: "Unterminated string literal",
	MetaBadEscape:          "Invalid escape sequence",
	MetaExpectItem:         "Expected attribute item",
	MetaExpectValue:        "Expected string value after '='",
	MetaUnclosedParen:      "Unclosed parenthesis in attribute",
	MetaTrailingTokens:     "Trailing tokens after attribute items",

	DirInfo:                  "Directive information",
	DirEmptyOnClause:         "Empty on-clause in on_unimplemented directive",
	DirInvalidOnClause:       "Invalid on-clause in on_unimplemented directive",
	DirExpectValue:           "Directive item must have a valid value",
	DirRequiresValue:         "on_unimplemented attribute requires a value",
	DirMatchesMultipleBounds: "Multiple bound literals in matches clause",
	DirMatchesMultipleSelf:   "Multiple Self types in matches clause",
	DirMatchesMissingBound:   "matches clause is missing its bound literal",
	DirMatchesMissingSelf:    "matches clause is missing its Self pair",
	DirNotArity:              "not() takes exactly one condition",

	TmplUnknownParam:  "Unknown type parameter in format string",
	TmplPositionalArg: "Positional substitution in format string",
	TmplUnclosedBrace: "Unclosed '{' in format string",
	TmplStrayBrace:    "Stray '}' in format string",

	WorldDuplicateTrait:  "Duplicate trait declaration",
	WorldDuplicateType:   "Duplicate type declaration",
	WorldDuplicateParam:  "Duplicate generic parameter name",
	WorldUnknownTrait:    "Reference to unknown trait",
	WorldUnknownType:     "Reference to unknown type",
	WorldBadResolution:   "Resolution target is neither a trait nor a type",
	WorldDirectiveForms:  "Trait declares both list and string directive forms",
	WorldMissingSelfArg:  "Trait reference is missing its Self type",
	WorldUnknownParamArg: "Argument for undeclared generic parameter",

	IOLoadFileError: "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ATR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DIR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("WLD%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
