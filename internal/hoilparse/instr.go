package hoilparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/LowLevelDaniel/COIL/internal/diag"
	"github.com/LowLevelDaniel/COIL/internal/hoillex"
	"github.com/LowLevelDaniel/COIL/internal/ir"
	"github.com/LowLevelDaniel/COIL/internal/types"
)

// mnemonics maps the plain-identifier opcodes (everything but BR/RET/CALL,
// which have dedicated keywords) to their ir.Opcode. Matched
// case-insensitively against the upper-cased lexeme.
var mnemonics = map[string]ir.Opcode{
	"NOP": ir.OpNop, "TRAP": ir.OpTrap, "UNREACHABLE": ir.OpUnreachable,
	"ADD": ir.OpAdd, "SUB": ir.OpSub, "MUL": ir.OpMul, "DIV": ir.OpDiv, "MOD": ir.OpMod, "NEG": ir.OpNeg,
	"AND": ir.OpAnd, "OR": ir.OpOr, "XOR": ir.OpXor, "NOT": ir.OpNot, "SHL": ir.OpShl, "SHR": ir.OpShr,
	"CMP_EQ": ir.OpCmpEq, "CMP_NE": ir.OpCmpNe, "CMP_LT": ir.OpCmpLt, "CMP_LE": ir.OpCmpLe, "CMP_GT": ir.OpCmpGt, "CMP_GE": ir.OpCmpGe,
	"LOAD": ir.OpLoad, "STORE": ir.OpStore, "MOV": ir.OpMov,
	"LOAD_I32": ir.OpLoadI32, "LOAD_I64": ir.OpLoadI64, "LOAD_F32": ir.OpLoadF32, "LOAD_F64": ir.OpLoadF64, "LOAD_BOOL": ir.OpLoadBool,
	"SWITCH": ir.OpSwitch,
	"SEXT":   ir.OpSExt, "ZEXT": ir.OpZExt, "TRUNC": ir.OpTrunc, "BITCAST": ir.OpBitcast,
	"VEC_EXTRACT": ir.OpVecExtract, "VEC_INSERT": ir.OpVecInsert,
}

// parseBlock parses one `IDENT ":" { instruction }` block, stopping at the
// function's closing brace or at the next block label (an IDENT or the
// ENTRY keyword immediately followed by ':').
func (p *Parser) parseBlock(mod *ir.Module, regCount *uint32) *ir.BasicBlock {
	var nameTok hoillex.Token
	if p.check(hoillex.KwEntry) {
		nameTok = p.advance()
	} else {
		nameTok = p.consume(hoillex.Ident, "expected a block label")
	}
	p.consume(hoillex.Colon, "expected ':' after block label")

	b := ir.NewBasicBlock(nameTok.Lexeme)
	for !p.atBlockEnd() {
		b.Append(p.parseInstruction(mod, regCount))
	}
	return b
}

func (p *Parser) atBlockEnd() bool {
	if p.check(hoillex.RBrace) || p.check(hoillex.EOF) {
		return true
	}
	return (p.check(hoillex.Ident) || p.check(hoillex.KwEntry)) && p.checkAhead(hoillex.Colon)
}

// parseInstruction parses one instruction per the grammar documented in
// parser.go's package comment.
func (p *Parser) parseInstruction(mod *ir.Module, regCount *uint32) *ir.Instruction {
	var dest ir.Operand
	hasDest := false
	var resultType types.Type

	if p.check(hoillex.Percent) {
		dest = p.parseRegister(mod, regCount)
		p.consume(hoillex.Equal, "expected '=' after destination register")
		hasDest = true
		resultType = dest.RegType
	}

	switch p.cur.Kind {
	case hoillex.KwBr:
		p.advance()
		return p.finishBr(mod, regCount)
	case hoillex.KwRet:
		p.advance()
		return p.finishRet(mod, regCount)
	case hoillex.KwCall:
		p.advance()
		return p.finishCall(mod, regCount, dest, hasDest, resultType)
	case hoillex.Ident:
		name := strings.ToUpper(p.cur.Lexeme)
		opc, ok := mnemonics[name]
		if !ok {
			p.error(p.cur, diag.ErrParserUnexpectedToken, fmt.Sprintf("unknown instruction mnemonic %q", p.cur.Lexeme))
		}
		p.advance()
		operands := p.parseOperandList(mod, regCount)
		p.consume(hoillex.Semicolon, "expected ';' after instruction")
		if hasDest {
			return ir.NewInstructionWithDest(opc, dest, resultType, operands...)
		}
		return ir.NewInstruction(opc, operands...)
	default:
		p.error(p.cur, diag.ErrParserUnexpectedToken, "expected an instruction")
		return ir.NewInstruction(ir.OpNop)
	}
}

func (p *Parser) finishBr(mod *ir.Module, regCount *uint32) *ir.Instruction {
	if p.match(hoillex.KwAlways) {
		p.match(hoillex.Comma)
		target := p.parseOperand(mod, regCount)
		p.consume(hoillex.Semicolon, "expected ';' after branch")
		return ir.NewInstruction(ir.OpBr, target)
	}

	first := p.parseOperand(mod, regCount)
	if p.match(hoillex.Comma) {
		trueB := p.parseOperand(mod, regCount)
		p.consume(hoillex.Comma, "expected ',' before false-branch target")
		falseB := p.parseOperand(mod, regCount)
		p.consume(hoillex.Semicolon, "expected ';' after branch")
		return ir.NewInstruction(ir.OpBr, first, trueB, falseB)
	}
	p.consume(hoillex.Semicolon, "expected ';' after branch")
	return ir.NewInstruction(ir.OpBr, first)
}

func (p *Parser) finishRet(mod *ir.Module, regCount *uint32) *ir.Instruction {
	if p.check(hoillex.Semicolon) {
		p.advance()
		return ir.NewInstruction(ir.OpRet)
	}
	v := p.parseOperand(mod, regCount)
	p.consume(hoillex.Semicolon, "expected ';' after return value")
	return ir.NewInstruction(ir.OpRet, v)
}

func (p *Parser) finishCall(mod *ir.Module, regCount *uint32, dest ir.Operand, hasDest bool, resultType types.Type) *ir.Instruction {
	p.consume(hoillex.At, "expected '@' before called function name")
	nameTok := p.consume(hoillex.Ident, "expected function name")
	operands := []ir.Operand{ir.NewFunctionRef(nameTok.Lexeme, types.VoidType)}

	for p.match(hoillex.Comma) {
		operands = append(operands, p.parseOperand(mod, regCount))
	}
	p.consume(hoillex.Semicolon, "expected ';' after call")

	if hasDest {
		return ir.NewInstructionWithDest(ir.OpCall, dest, resultType, operands...)
	}
	return ir.NewInstruction(ir.OpCall, operands...)
}

func (p *Parser) parseOperandList(mod *ir.Module, regCount *uint32) []ir.Operand {
	if p.check(hoillex.Semicolon) {
		return nil
	}
	var ops []ir.Operand
	for {
		ops = append(ops, p.parseOperand(mod, regCount))
		if !p.match(hoillex.Comma) {
			break
		}
	}
	return ops
}

func (p *Parser) parseOperand(mod *ir.Module, regCount *uint32) ir.Operand {
	switch p.cur.Kind {
	case hoillex.Percent:
		return p.parseRegister(mod, regCount)
	case hoillex.IntLiteral, hoillex.FloatLiteral, hoillex.Minus:
		return p.parseImmediate(mod)
	case hoillex.LBracket:
		return p.parseMemory(mod, regCount)
	case hoillex.At:
		p.advance()
		nameTok := p.consume(hoillex.Ident, "expected a global name after '@'")
		return ir.NewGlobalRef(nameTok.Lexeme, types.VoidType)
	case hoillex.Ident:
		return ir.NewBlockRef(p.advance().Lexeme)
	default:
		p.error(p.cur, diag.ErrParserUnexpectedToken, "expected an operand")
		return ir.Operand{}
	}
}

func (p *Parser) parseRegister(mod *ir.Module, regCount *uint32) ir.Operand {
	p.consume(hoillex.Percent, "expected '%' before register number")
	numTok := p.consume(hoillex.IntLiteral, "expected a register number")
	n, _ := strconv.ParseUint(numTok.Lexeme, 0, 32)
	p.consume(hoillex.Colon, "expected ':' after register number")
	t := p.parseType(mod)
	trackRegister(regCount, uint32(n))
	return ir.NewRegister(uint32(n), t)
}

func (p *Parser) parseImmediate(mod *ir.Module) ir.Operand {
	neg := p.match(hoillex.Minus)
	tok := p.advance() // IntLiteral or FloatLiteral
	p.consume(hoillex.Colon, "expected ':' after immediate value")
	t := p.parseType(mod)

	if t.IsFloat() {
		f, _ := strconv.ParseFloat(tok.Lexeme, 64)
		if neg {
			f = -f
		}
		var bits int64
		if t.Width() == 32 {
			bits = int64(math.Float32bits(float32(f)))
		} else {
			bits = int64(math.Float64bits(f))
		}
		return ir.NewImmediate(bits, t)
	}

	n, _ := strconv.ParseInt(tok.Lexeme, 0, 64)
	if neg {
		n = -n
	}
	return ir.NewImmediate(n, t)
}

func (p *Parser) parseMemory(mod *ir.Module, regCount *uint32) ir.Operand {
	p.consume(hoillex.LBracket, "expected '['")
	p.consume(hoillex.Percent, "expected '%' before base register")
	baseTok := p.consume(hoillex.IntLiteral, "expected a base register number")
	base, _ := strconv.ParseUint(baseTok.Lexeme, 0, 16)
	trackRegister(regCount, uint32(base))

	m := ir.Memory{BaseReg: uint16(base), Scale: 1}

	for p.match(hoillex.Plus) {
		if p.check(hoillex.Percent) {
			p.advance()
			idxTok := p.consume(hoillex.IntLiteral, "expected an index register number")
			idx, _ := strconv.ParseUint(idxTok.Lexeme, 0, 16)
			trackRegister(regCount, uint32(idx))
			m.IndexReg = uint16(idx)
			if p.match(hoillex.Star) {
				scaleTok := p.consume(hoillex.IntLiteral, "expected a scale factor")
				scale, _ := strconv.ParseUint(scaleTok.Lexeme, 0, 8)
				m.Scale = uint8(scale)
			}
		} else {
			offTok := p.consume(hoillex.IntLiteral, "expected an offset")
			off, _ := strconv.ParseInt(offTok.Lexeme, 0, 32)
			m.Offset = int32(off)
		}
	}

	p.consume(hoillex.RBracket, "expected ']' to close memory operand")
	p.consume(hoillex.Colon, "expected ':' after memory operand")
	m.RefType = p.parseType(mod)
	return ir.NewMemory(m)
}

func trackRegister(regCount *uint32, n uint32) {
	if n+1 > *regCount {
		*regCount = n + 1
	}
}
