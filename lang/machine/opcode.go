package machine

// OpCode identifies one VM instruction. Grouping and naming follow the
// authoritative opcode enum of the source this module's bytecode format was
// distilled from (Core/src/bytecode.rs): zero-operand, one-chunk-operand
// (short form), two-chunk-operand (long form of the same op), and the
// variable-length MakeClosure family. Byte values are a persisted contract;
// never reorder this list.
type OpCode byte

//nolint:revive
const (
	// Zero operands.
	Add OpCode = iota
	BitwiseAnd
	BitwiseNot
	BitwiseOr
	BitwiseShiftLeft
	BitwiseShiftRight
	BitwiseXor
	Divide
	EndVirtualMachine
	Equals
	GreaterThan
	GreaterThanEq
	LessThan
	LessThanEq
	LoadImm0F
	LoadImm0I
	LoadImm1F
	LoadImm1I
	LoadFalse
	LoadNone
	LoadTrue
	LogicNot
	MakeIter
	Modulus
	Multiply
	Negate
	Nonish
	NotEq
	PopCloseUpVal
	PopStackTop
	Pow
	Return
	Subscript
	SubscriptAssign
	Subtract
	TypeOf

	// One chunk operand (short form; Long variants below are the long form
	// of the very same operation, not a distinct opcode family).
	BindDefaults
	CloseUpVal
	DefineGlobal
	FuncCall
	GetGlobal
	GetLocal
	GetUpVal
	GetProp
	SetProp
	AppendClassField
	LoadConstant
	LoadImmN
	LoadNative
	LoopJump
	MakeArray
	MakeClass
	MakeInstanceOp
	MakeDict
	MakeRange
	MakeRangeEq
	MakeTuple
	SetGlobal
	SetLocal
	SetUpVal

	// Two chunk operands (long forms), then the jumps (2-byte offset), then
	// PopStackTopN/RotateTopN/BuildStr, whose short forms take one operand
	// byte and whose Long forms take two.
	DefineGlobalLong
	CloseUpValLong
	FuncCallLong
	GetGlobalLong
	GetLocalLong
	GetUpValLong
	LoadConstantLong
	LoadImmNLong
	LoadNativeLong
	LoopJumpLong
	MakeArrayLong
	MakeDictLong
	MakeRangeLong
	MakeRangeEqLong
	MakeTupleLong
	SetGlobalLong
	SetLocalLong
	SetUpValLong
	ForIterNextOrJump
	JumpForward
	JumpIfFalseOrPop
	JumpIfTrueOrPop
	JumpIfNotNoneOrPop
	PopJumpIfFalse
	IfFalsePopJump
	PopStackTopN
	PopStackTopNLong
	RotateTopN
	RotateTopNLong
	BuildStr
	BuildStrLong

	// Variable-length: 1- or 2-byte function-pool index (Long), followed by
	// M up-value records of 2 bytes (flag byte + 1-byte slot) or 3 bytes
	// (Large: flag byte + 2-byte slot).
	MakeClosure
	MakeClosureLong
	MakeClosureLarge
	MakeClosureLongLarge
)

var opcodeNames = map[OpCode]string{
	Add: "Add", BitwiseAnd: "BitwiseAnd", BitwiseNot: "BitwiseNot", BitwiseOr: "BitwiseOr",
	BitwiseShiftLeft: "BitwiseShiftLeft", BitwiseShiftRight: "BitwiseShiftRight", BitwiseXor: "BitwiseXor",
	Divide: "Divide", EndVirtualMachine: "EndVirtualMachine", Equals: "Equals",
	GreaterThan: "GreaterThan", GreaterThanEq: "GreaterThanEq", LessThan: "LessThan", LessThanEq: "LessThanEq",
	LoadImm0F: "LoadImm0F", LoadImm0I: "LoadImm0I", LoadImm1F: "LoadImm1F", LoadImm1I: "LoadImm1I",
	LoadFalse: "LoadFalse", LoadNone: "LoadNone", LoadTrue: "LoadTrue", LogicNot: "LogicNot",
	MakeIter: "MakeIter", Modulus: "Modulus", Multiply: "Multiply", Negate: "Negate", Nonish: "Nonish",
	NotEq: "NotEq", PopCloseUpVal: "PopCloseUpVal", PopStackTop: "PopStackTop", Pow: "Pow",
	Return: "Return", Subscript: "Subscript", SubscriptAssign: "SubscriptAssign", Subtract: "Subtract",
	TypeOf: "TypeOf",

	BindDefaults: "BindDefaults", CloseUpVal: "CloseUpVal", DefineGlobal: "DefineGlobal",
	FuncCall: "FuncCall", GetGlobal: "GetGlobal", GetLocal: "GetLocal", GetUpVal: "GetUpVal",
	GetProp: "GetProp", SetProp: "SetProp", AppendClassField: "AppendClassField",
	LoadConstant: "LoadConstant", LoadImmN: "LoadImmN", LoadNative: "LoadNative", LoopJump: "LoopJump",
	MakeArray: "MakeArray", MakeClass: "MakeClass", MakeInstanceOp: "MakeInstanceOp",
	MakeDict: "MakeDict", MakeRange: "MakeRange", MakeRangeEq: "MakeRangeEq",
	MakeTuple: "MakeTuple", SetGlobal: "SetGlobal", SetLocal: "SetLocal", SetUpVal: "SetUpVal",

	DefineGlobalLong: "DefineGlobalLong", CloseUpValLong: "CloseUpValLong", FuncCallLong: "FuncCallLong",
	GetGlobalLong: "GetGlobalLong", GetLocalLong: "GetLocalLong", GetUpValLong: "GetUpValLong",
	LoadConstantLong: "LoadConstantLong", LoadImmNLong: "LoadImmNLong", LoadNativeLong: "LoadNativeLong",
	LoopJumpLong: "LoopJumpLong", MakeArrayLong: "MakeArrayLong", MakeDictLong: "MakeDictLong",
	MakeRangeLong: "MakeRangeLong", MakeRangeEqLong: "MakeRangeEqLong", MakeTupleLong: "MakeTupleLong",
	SetGlobalLong: "SetGlobalLong", SetLocalLong: "SetLocalLong", SetUpValLong: "SetUpValLong",
	ForIterNextOrJump: "ForIterNextOrJump", JumpForward: "JumpForward", JumpIfFalseOrPop: "JumpIfFalseOrPop",
	JumpIfTrueOrPop: "JumpIfTrueOrPop", JumpIfNotNoneOrPop: "JumpIfNotNoneOrPop",
	PopJumpIfFalse: "PopJumpIfFalse", IfFalsePopJump: "IfFalsePopJump",
	PopStackTopN: "PopStackTopN", PopStackTopNLong: "PopStackTopNLong", RotateTopN: "RotateTopN",
	RotateTopNLong: "RotateTopNLong", BuildStr: "BuildStr", BuildStrLong: "BuildStrLong",

	MakeClosure: "MakeClosure", MakeClosureLong: "MakeClosureLong",
	MakeClosureLarge: "MakeClosureLarge", MakeClosureLongLarge: "MakeClosureLongLarge",
}

func (op OpCode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "Unknown"
}

// shortLong pairs a short-form opcode with its long-form counterpart, so the
// compiler can pick the right one based on operand width without a switch
// at every emission site.
var shortLong = map[OpCode]OpCode{
	DefineGlobal: DefineGlobalLong,
	CloseUpVal:   CloseUpValLong,
	FuncCall:     FuncCallLong,
	GetGlobal:    GetGlobalLong,
	GetLocal:     GetLocalLong,
	GetUpVal:     GetUpValLong,
	LoadConstant: LoadConstantLong,
	LoadImmN:     LoadImmNLong,
	LoadNative:   LoadNativeLong,
	LoopJump:     LoopJumpLong,
	MakeArray:    MakeArrayLong,
	MakeDict:     MakeDictLong,
	MakeRange:    MakeRangeLong,
	MakeRangeEq:  MakeRangeEqLong,
	MakeTuple:    MakeTupleLong,
	SetGlobal:    SetGlobalLong,
	SetLocal:     SetLocalLong,
	SetUpVal:     SetUpValLong,
	PopStackTopN: PopStackTopNLong,
	RotateTopN:   RotateTopNLong,
	BuildStr:     BuildStrLong,
}

// longForm returns the 2-byte-operand counterpart of a short-form opcode.
func longForm(op OpCode) OpCode {
	if l, ok := shortLong[op]; ok {
		return l
	}
	return op
}

// LongForm is the compiler-facing export of longForm: given a short-form
// opcode it returns its 2-byte-operand counterpart, so the compiler can
// pick the right width at emission time without its own copy of the table.
func LongForm(op OpCode) OpCode { return longForm(op) }
