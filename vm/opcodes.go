// Package vm implements the bytecode interpreter: a stack machine over
// package object's Object values, consuming a Bytes code block, a Dict
// of locals, and a Tuple of arguments.
//
// The opcode enum and numbering, and the decode helpers in decode.go,
// are grounded on original_source/src/interpreter.rs (the Opcode enum
// and next_opcode/next_unsigned/next_signed/next_float/next_bytes
// functions). Most opcode bodies in that file are left as todo!() —
// per spec.md §9's note, those are implemented here from the opcode
// contracts in spec.md §4.6 rather than any partial source behavior.
package vm

// Op is a single bytecode instruction's opcode byte.
type Op byte

const (
	OpError Op = 0

	OpStSwap Op = 1
	OpStPop  Op = 2
	OpStDup  Op = 3
	OpStDup2 Op = 4

	OpLitBytes Op = 10
	OpLitInt   Op = 11
	OpLitFloat Op = 12
	OpLitSlice Op = 13
	OpLitNone  Op = 14
	OpLitTrue  Op = 15
	OpLitFalse Op = 16

	OpTuple0 Op = 17
	OpTuple1 Op = 18
	OpTuple2 Op = 19
	OpTuple3 Op = 20
	OpTuple4 Op = 21
	OpTupleN Op = 22

	OpClosure     Op = 23
	OpClosureBind Op = 24
	OpEmptyDict   Op = 25
	OpClass       Op = 26

	OpGetAttr  Op = 40
	OpSetAttr  Op = 41
	OpDelAttr  Op = 42
	OpGetItem  Op = 43
	OpSetItem  Op = 44
	OpDelItem  Op = 45
	OpGetLocal Op = 46
	OpSetLocal Op = 47
	OpDelLocal Op = 48
	OpLoadArgs Op = 49

	OpJump           Op = 60
	OpJumpIf         Op = 61
	OpTry            Op = 62
	OpTryEnd         Op = 63
	OpCall           Op = 64
	OpSpawn          Op = 65
	OpRaise          Op = 66
	OpReturn         Op = 67
	OpYield          Op = 68
	OpRaiseIfNotStop Op = 69

	OpAdd Op = 80
	OpSub Op = 81
	OpMul Op = 82
	OpDiv Op = 83
	OpMod Op = 84
	OpAnd Op = 85
	OpOr  Op = 86
	OpXor Op = 87
	OpNeg Op = 88
	OpNot Op = 89
	OpInv Op = 90
	OpEq  Op = 91
	OpNe  Op = 92
	OpGt  Op = 93
	OpLt  Op = 94
	OpGe  Op = 95
	OpLe  Op = 96
	OpShl Op = 97
	OpShr Op = 98
)

// dunderFor names the dunder method an arithmetic/relational opcode
// dispatches to (§4.6 "dispatch to dunder methods").
var dunderFor = map[Op]string{
	OpAdd: "__add__",
	OpSub: "__sub__",
	OpMul: "__mul__",
	OpDiv: "__div__",
	OpMod: "__mod__",
	OpAnd: "__and__",
	OpOr:  "__or__",
	OpXor: "__xor__",
	OpEq:  "__eq__",
	OpNe:  "__ne__",
	OpGt:  "__gt__",
	OpLt:  "__lt__",
	OpGe:  "__ge__",
	OpLe:  "__le__",
	OpShl: "__shl__",
	OpShr: "__shr__",
}

// unaryDunderFor names the dunder a unary opcode dispatches to.
var unaryDunderFor = map[Op]string{
	OpNeg: "__neg__",
	OpNot: "__not__",
	OpInv: "__inv__",
}
