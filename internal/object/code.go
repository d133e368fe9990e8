package object

// OpCode identifies one bytecode instruction. The set is closed: every
// opcode the compiler can emit and the VM can execute is named here.
type OpCode int

const (
	PopTop OpCode = iota
	LoadConst
	LoadName
	StoreName
	BinaryAdd
	BinaryLt
	BinaryEq
	MakeFunction
	CallFunctionOp
	ReturnValue
	LoadAttr
	StoreAttr
	BinarySubScr
	StoreSubScr
	BuildList
	BuildMap
	PopJumpIfTrue
	PopJumpIfFalse
	JumpAbsolute
	SetupLoop
	BreakLoop
	ContinueLoop
	GetIterOp
	ForIter
	SetupExcept
	Raise
	PopBlock
	MakeClass
)

var opNames = map[OpCode]string{
	PopTop:         "PopTop",
	LoadConst:      "LoadConst",
	LoadName:       "LoadName",
	StoreName:      "StoreName",
	BinaryAdd:      "BinaryAdd",
	BinaryLt:       "BinaryLt",
	BinaryEq:       "BinaryEq",
	MakeFunction:   "MakeFunction",
	CallFunctionOp: "CallFunction",
	ReturnValue:    "ReturnValue",
	LoadAttr:       "LoadAttr",
	StoreAttr:      "StoreAttr",
	BinarySubScr:   "BinarySubScr",
	StoreSubScr:    "StoreSubScr",
	BuildList:      "BuildList",
	BuildMap:       "BuildMap",
	PopJumpIfTrue:  "PopJumpIfTrue",
	PopJumpIfFalse: "PopJumpIfFalse",
	JumpAbsolute:   "JumpAbsolute",
	SetupLoop:      "SetupLoop",
	BreakLoop:      "BreakLoop",
	ContinueLoop:   "ContinueLoop",
	GetIterOp:      "GetIter",
	ForIter:        "ForIter",
	SetupExcept:    "SetupExcept",
	Raise:          "Raise",
	PopBlock:       "PopBlock",
	MakeClass:      "MakeClass",
}

func (op OpCode) String() string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return "Unknown"
}

// Instruction is one opcode plus its single integer argument. Most
// opcodes ignore Arg; the ones that use it document the meaning: a
// constant-pool index, an absolute jump target, an argument or base
// count, or (for SetupExcept) the instruction's own index.
type Instruction struct {
	Op  OpCode
	Arg int

	// Name holds the identifier operand for LoadName/StoreName/LoadAttr/
	// StoreAttr, avoiding a second parallel name table.
	Name string
}

// ExceptClause is one `except [Type [as name]]:` arm belonging to a
// SetupExcept block, keyed by that instruction's own index (its Arg).
// The closed opcode set has no isinstance or "load current exception"
// instruction, so a try statement's clause list (type name to match,
// the bind name, where its body starts) travels as Code side-table
// data the VM consults natively instead of being re-expressed as
// bytecode; a bare `except:` is recorded with an empty TypeName.
type ExceptClause struct {
	HandlerKey int
	TypeName   string
	BindName   string
	BodyStart  int
}
