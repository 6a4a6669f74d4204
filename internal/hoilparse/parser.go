// Package hoilparse implements the HOIL parser: recursive-descent with
// panic-mode recovery, producing an *ir.Module directly (spec.md §4.5).
//
// Instruction syntax (not fixed by spec.md, which only names mnemonics and
// operand kinds) is:
//
//	instruction := [ register "=" ] MNEMONIC [ operand { "," operand } ] ";"
//	operand     := register | immediate | memory | "@" IDENT | IDENT
//	register    := "%" INT ":" type
//	immediate   := ["-"] (INT | FLOAT) ":" type
//	memory      := "[" "%" INT ["+" INT] ["+" "%" INT ["*" INT]] "]" ":" type
//
// A bare IDENT operand denotes a basic-block reference; "@" IDENT denotes a
// function or global reference, disambiguated by the instruction that uses
// it (CALL's first operand is always a function reference).
package hoilparse

import (
	"fmt"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/hoillex"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

// Parser holds all state for one parse of a HOIL source buffer. Errors
// are reported through the diagnostic sink; Parser.Errors additionally
// accumulates them for callers that want a plain slice (spec.md §9,
// "error accumulation").
type Parser struct {
	lex   *hoillex.Lexer
	sink  *diag.Sink
	file  string
	cur   hoillex.Token
	ahead hoillex.Token

	structTypes map[string]types.Type

	Errors []*diag.Diagnostic
}

// New returns a parser over source. Diagnostics are reported to sink,
// attributed to file.
func New(source, file string, sink *diag.Sink) *Parser {
	p := &Parser{
		lex:         hoillex.New(source, file),
		sink:        sink,
		file:        file,
		structTypes: make(map[string]types.Type),
	}
	p.cur = p.lex.Next()
	p.ahead = p.lex.Peek()
	return p
}

// ParseModule parses a full HOIL translation unit and returns the
// resulting module. On error, diagnostics are reported via the sink;
// callers should consult sink.HadErrors() rather than a return value
// (spec.md §9).
func (p *Parser) ParseModule() *ir.Module {
	p.consume(hoillex.KwModule, "expected 'MODULE' at start of file")
	nameTok := p.consume(hoillex.StringLiteral, "expected module name string literal")
	p.consume(hoillex.Semicolon, "expected ';' after module name")

	mod := ir.New(nameTok.Lexeme)

	for !p.check(hoillex.EOF) {
		p.parseItemRecovering(mod)
	}
	return mod
}

// parseItemRecovering parses one top-level item, catching a panic raised
// by p.error and resynchronizing so the rest of the file is still
// analyzed (panic-mode recovery, spec.md §4.5).
func (p *Parser) parseItemRecovering(mod *ir.Module) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
		}
	}()
	p.item(mod)
}

type parseError struct{}

func (p *Parser) item(mod *ir.Module) {
	switch p.cur.Kind {
	case hoillex.KwType:
		p.typeDecl(mod)
	case hoillex.KwGlobal:
		p.globalDecl(mod, false)
	case hoillex.KwConstant:
		p.globalDecl(mod, true)
	case hoillex.KwExtern:
		p.externDecl(mod)
	case hoillex.KwFunction:
		p.functionDecl(mod)
	case hoillex.KwTarget:
		p.targetDecl(mod)
	default:
		p.error(p.cur, diag.ErrParserUnexpectedToken, fmt.Sprintf("expected a top-level item, got %q", p.cur.Lexeme))
	}
}

// synchronize discards tokens until a ';' is consumed or the next token
// starts a new item, per spec.md §4.5 ("skip tokens until ';' or the next
// item-starter keyword").
func (p *Parser) synchronize() {
	for !p.check(hoillex.EOF) {
		if p.cur.Kind == hoillex.Semicolon {
			p.advance()
			return
		}
		switch p.cur.Kind {
		case hoillex.KwType, hoillex.KwGlobal, hoillex.KwConstant,
			hoillex.KwExtern, hoillex.KwFunction, hoillex.KwTarget:
			return
		}
		p.advance()
	}
}

func (p *Parser) typeDecl(mod *ir.Module) {
	p.consume(hoillex.KwType, "expected 'TYPE'")
	nameTok := p.consume(hoillex.Ident, "expected type name")
	p.consume(hoillex.LBrace, "expected '{' to start struct body")

	var fieldNames []string
	var fieldTypes []types.Type
	for !p.check(hoillex.RBrace) {
		fTok := p.consume(hoillex.Ident, "expected field name")
		p.consume(hoillex.Colon, "expected ':' after field name")
		ft := p.parseType(mod)
		fieldNames = append(fieldNames, fTok.Lexeme)
		fieldTypes = append(fieldTypes, ft)
		if !p.check(hoillex.RBrace) {
			p.consume(hoillex.Comma, "expected ',' between struct fields")
		}
	}
	p.consume(hoillex.RBrace, "expected '}' to close struct body")
	p.consume(hoillex.Semicolon, "expected ';' after type declaration")

	t := mod.Registry.CreateStruct(nameTok.Lexeme, fieldNames, fieldTypes)
	p.structTypes[nameTok.Lexeme] = t
}

func (p *Parser) globalDecl(mod *ir.Module, constant bool) {
	p.advance() // GLOBAL or CONSTANT
	nameTok := p.consume(hoillex.Ident, "expected global name")
	p.consume(hoillex.Colon, "expected ':' after global name")
	t := p.parseType(mod)
	p.consume(hoillex.Semicolon, "expected ';' after global declaration")

	g := ir.NewGlobal(nameTok.Lexeme, t, constant, false, mod.Registry.AlignOf(t))
	mod.AddGlobal(g)
}

func (p *Parser) externDecl(mod *ir.Module) {
	p.consume(hoillex.KwExtern, "expected 'EXTERN'")
	p.consume(hoillex.KwFunction, "expected 'FUNCTION' after 'EXTERN'")
	nameTok := p.consume(hoillex.Ident, "expected function name")

	params, variadic := p.parseParams(mod)
	p.consume(hoillex.Arrow, "expected '->' before return type")
	ret := p.parseType(mod)
	p.consume(hoillex.Semicolon, "expected ';' after extern function declaration")

	mod.AddFunction(ir.NewFunction(nameTok.Lexeme, ret, params, variadic, true))
}

func (p *Parser) functionDecl(mod *ir.Module) {
	p.consume(hoillex.KwFunction, "expected 'FUNCTION'")
	nameTok := p.consume(hoillex.Ident, "expected function name")

	params, variadic := p.parseParams(mod)
	p.consume(hoillex.Arrow, "expected '->' before return type")
	ret := p.parseType(mod)

	f := ir.NewFunction(nameTok.Lexeme, ret, params, variadic, false)

	p.consume(hoillex.LBrace, "expected '{' to start function body")
	var regCount uint32
	for !p.check(hoillex.RBrace) && !p.check(hoillex.EOF) {
		f.AddBlock(p.parseBlock(mod, &regCount))
	}
	p.consume(hoillex.RBrace, "expected '}' to close function body")
	f.RegisterCount = regCount

	mod.AddFunction(f)
}

func (p *Parser) parseParams(mod *ir.Module) ([]ir.Parameter, bool) {
	p.consume(hoillex.LParen, "expected '(' to start parameter list")
	var params []ir.Parameter
	variadic := false
	if !p.check(hoillex.RParen) {
		for {
			if p.check(hoillex.Ellipsis) {
				p.advance()
				variadic = true
				break
			}
			nameTok := p.consume(hoillex.Ident, "expected parameter name")
			p.consume(hoillex.Colon, "expected ':' after parameter name")
			t := p.parseType(mod)
			params = append(params, ir.Parameter{Name: nameTok.Lexeme, Type: t})
			if !p.match(hoillex.Comma) {
				break
			}
		}
	}
	p.consume(hoillex.RParen, "expected ')' to close parameter list")
	return params, variadic
}

func (p *Parser) targetDecl(mod *ir.Module) {
	p.consume(hoillex.KwTarget, "expected 'TARGET'")
	p.consume(hoillex.LBrace, "expected '{' to start target block")
	for !p.check(hoillex.RBrace) && !p.check(hoillex.EOF) {
		fieldTok := p.consume(hoillex.Ident, "expected target field name")
		p.consume(hoillex.Equal, "expected '=' in target field")

		var value string
		switch p.cur.Kind {
		case hoillex.StringLiteral, hoillex.Ident, hoillex.IntLiteral:
			value = p.advance().Lexeme
		default:
			p.error(p.cur, diag.ErrParserUnexpectedToken, "expected a value after '='")
		}

		switch strings.ToLower(fieldTok.Lexeme) {
		case "required":
			mod.TargetReqs.Required = append(mod.TargetReqs.Required, value)
		case "preferred":
			mod.TargetReqs.Preferred = append(mod.TargetReqs.Preferred, value)
		case "device_class":
			mod.TargetReqs.DeviceClass = value
		}
		p.match(hoillex.Comma)
		p.match(hoillex.Semicolon)
	}
	p.consume(hoillex.RBrace, "expected '}' to close target block")
}

// --- token utilities, grounded on the teacher's match/check/consume shape ---

func (p *Parser) match(k hoillex.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(k hoillex.Kind) bool { return p.cur.Kind == k }

func (p *Parser) checkAhead(k hoillex.Kind) bool { return p.ahead.Kind == k }

func (p *Parser) advance() hoillex.Token {
	prev := p.cur
	p.cur = p.lex.Next()
	p.ahead = p.lex.Peek()
	return prev
}

func (p *Parser) consume(k hoillex.Kind, msg string) hoillex.Token {
	if p.check(k) {
		return p.advance()
	}
	p.error(p.cur, diag.ErrParserUnexpectedToken, fmt.Sprintf("%s (got %q)", msg, p.cur.Lexeme))
	return hoillex.Token{}
}

func (p *Parser) error(tok hoillex.Token, code int, msg string) {
	d := p.sink.Report(diag.Error, diag.Parser, code, msg, diag.Location{File: p.file, Line: tok.Line, Column: tok.Column})
	p.Errors = append(p.Errors, d)
	panic(parseError{})
}
