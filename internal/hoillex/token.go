// Package hoillex implements the HOIL lexer: a lazy, non-restartable
// token sequence over UTF-8 source text (spec.md §4.4).
package hoillex

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	EOF Kind = iota
	Error

	Ident
	IntLiteral
	FloatLiteral
	StringLiteral

	// Keywords.
	KwModule
	KwType
	KwConstant
	KwGlobal
	KwFunction
	KwExtern
	KwTarget
	KwEntry
	KwBr
	KwAlways
	KwRet
	KwCall

	// Type keywords.
	KwVoid
	KwBool
	KwI8
	KwI16
	KwI32
	KwI64
	KwU8
	KwU16
	KwU32
	KwU64
	KwF16
	KwF32
	KwF64
	KwPtr
	KwArray
	KwVec
	KwFunctionType

	// Punctuation.
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Semicolon
	At

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Equal
	Less
	Greater
	Dot
	Arrow // "->"
	Ellipsis
)

var keywords = map[string]Kind{
	"MODULE":   KwModule,
	"TYPE":     KwType,
	"CONSTANT": KwConstant,
	"GLOBAL":   KwGlobal,
	"FUNCTION": KwFunction,
	"EXTERN":   KwExtern,
	"TARGET":   KwTarget,
	"ENTRY":    KwEntry,
	"BR":       KwBr,
	"ALWAYS":   KwAlways,
	"RET":      KwRet,
	"CALL":     KwCall,

	"void":     KwVoid,
	"bool":     KwBool,
	"i8":       KwI8,
	"i16":      KwI16,
	"i32":      KwI32,
	"i64":      KwI64,
	"u8":       KwU8,
	"u16":      KwU16,
	"u32":      KwU32,
	"u64":      KwU64,
	"f16":      KwF16,
	"f32":      KwF32,
	"f64":      KwF64,
	"ptr":      KwPtr,
	"array":    KwArray,
	"vec":      KwVec,
	"function": KwFunctionType,
}

var kindNames = map[Kind]string{
	EOF: "EOF", Error: "ERROR",
	Ident: "IDENT", IntLiteral: "INT", FloatLiteral: "FLOAT", StringLiteral: "STRING",
	KwModule: "MODULE", KwType: "TYPE", KwConstant: "CONSTANT", KwGlobal: "GLOBAL",
	KwFunction: "FUNCTION", KwExtern: "EXTERN", KwTarget: "TARGET", KwEntry: "ENTRY",
	KwBr: "BR", KwAlways: "ALWAYS", KwRet: "RET", KwCall: "CALL",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Comma: ",", Colon: ":", Semicolon: ";", At: "@",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", Bang: "!", Equal: "=",
	Less: "<", Greater: ">", Dot: ".", Arrow: "->", Ellipsis: "...",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "?"
}

// Token is one lexical unit with its source position. Line and Column
// are 1-based.
type Token struct {
	Kind    Kind
	Lexeme  string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Lexeme, t.Line, t.Column)
}
