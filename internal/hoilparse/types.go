package hoilparse

import (
	"fmt"
	"strconv"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/hoillex"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

// parseType implements the `type` production from spec.md §4.5. A bare
// identifier denotes a previously declared struct; forward references are
// not permitted, matching the spec's tie-break rule.
func (p *Parser) parseType(mod *ir.Module) types.Type {
	switch p.cur.Kind {
	case hoillex.KwVoid:
		p.advance()
		return types.VoidType
	case hoillex.KwBool:
		p.advance()
		return types.BoolType
	case hoillex.KwI8:
		p.advance()
		return types.I8
	case hoillex.KwI16:
		p.advance()
		return types.I16
	case hoillex.KwI32:
		p.advance()
		return types.I32
	case hoillex.KwI64:
		p.advance()
		return types.I64
	case hoillex.KwU8:
		p.advance()
		return types.U8
	case hoillex.KwU16:
		p.advance()
		return types.U16
	case hoillex.KwU32:
		p.advance()
		return types.U32
	case hoillex.KwU64:
		p.advance()
		return types.U64
	case hoillex.KwF16:
		p.advance()
		return types.F16
	case hoillex.KwF32:
		p.advance()
		return types.F32
	case hoillex.KwF64:
		p.advance()
		return types.F64
	case hoillex.KwPtr:
		return p.parsePointerType(mod)
	case hoillex.KwVec:
		return p.parseVectorType(mod)
	case hoillex.KwArray:
		return p.parseArrayType(mod)
	case hoillex.Ident:
		name := p.advance().Lexeme
		if t, ok := p.structTypes[name]; ok {
			return t
		}
		p.error(p.cur, diag.ErrParserUnexpectedToken,
			fmt.Sprintf("undefined struct type %q (forward references are not permitted)", name))
		return types.VoidType
	default:
		p.error(p.cur, diag.ErrParserUnexpectedToken, "expected a type")
		return types.VoidType
	}
}

func (p *Parser) parsePointerType(mod *ir.Module) types.Type {
	p.consume(hoillex.KwPtr, "expected 'ptr'")
	p.consume(hoillex.Less, "expected '<' after 'ptr'")
	base := p.parseType(mod)

	var quals types.Qualifier
	if p.match(hoillex.Comma) {
		qualTok := p.consume(hoillex.Ident, "expected a qualifier name")
		quals = parseQualifier(qualTok.Lexeme)
	}
	p.consume(hoillex.Greater, "expected '>' to close 'ptr<...>'")
	return types.NewPointer(base, types.SpaceGlobal, quals)
}

func (p *Parser) parseVectorType(mod *ir.Module) types.Type {
	p.consume(hoillex.KwVec, "expected 'vec'")
	p.consume(hoillex.Less, "expected '<' after 'vec'")
	elem := p.parseType(mod)
	p.consume(hoillex.Comma, "expected ',' before vector element count")
	countTok := p.consume(hoillex.IntLiteral, "expected vector element count")
	p.consume(hoillex.Greater, "expected '>' to close 'vec<...>'")

	count, _ := strconv.ParseUint(countTok.Lexeme, 0, 8)
	return types.NewVector(elem, uint8(count))
}

func (p *Parser) parseArrayType(mod *ir.Module) types.Type {
	p.consume(hoillex.KwArray, "expected 'array'")
	p.consume(hoillex.Less, "expected '<' after 'array'")
	elem := p.parseType(mod)

	var count uint64
	if p.match(hoillex.Comma) {
		countTok := p.consume(hoillex.IntLiteral, "expected array element count")
		count, _ = strconv.ParseUint(countTok.Lexeme, 0, 32)
	}
	p.consume(hoillex.Greater, "expected '>' to close 'array<...>'")
	return types.NewArray(elem, uint32(count))
}

func parseQualifier(name string) types.Qualifier {
	switch name {
	case "unsigned":
		return types.Unsigned
	case "const":
		return types.Const
	case "volatile":
		return types.Volatile
	case "restrict":
		return types.Restrict
	case "atomic":
		return types.Atomic
	default:
		return 0
	}
}
