// Package bytecode implements the stack machine that executes
// object.Code: a value stack, a block stack for loop/except bookkeeping,
// and the "why" unwind state machine that return/break/continue/raise
// all drive through on their way out of a frame.
package bytecode

import (
	"fmt"

	"github.com/cwbudde/go-pyvm/internal/object"
)

func init() {
	object.CallFunction = callFunction
}

// MaxRecursionDepth caps nested Function calls so a runaway recursive
// program fails with a catchable-looking diagnostic instead of a Go
// stack overflow. cmd/pyvm sets this from config.Config.MaxRecursion
// before calling Run; zero or negative leaves it unenforced.
var MaxRecursionDepth int

var callDepth int

// blockKind distinguishes the two reasons a block sits on the block
// stack: a loop, which BreakLoop/ContinueLoop target, and an except
// handler, which a propagating exception consults.
type blockKind int

const (
	blockLoop blockKind = iota
	blockExcept
)

type block struct {
	kind   blockKind
	target int // loop: PC just past the loop, for BreakLoop; except: the SetupExcept instruction's own index, used as the ExceptTable lookup key
	level  int // value-stack depth at the point the block was pushed, truncated back to on break/except-match/discard
}

// why is the reason a frame stopped executing normally, mirroring the
// WHY_* states a CPython-style eval loop threads through block unwind.
type why int

const (
	whyNone why = iota
	whyReturn
	whyBreak
	whyContinue
	whyException
)

// frame is one activation of a Code object against an Environment.
type frame struct {
	code  *object.Code
	env   *object.Environment
	stack []object.Value
	blocks []block
	pc    int
}

func (f *frame) push(v object.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() object.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *frame) top() object.Value { return f.stack[len(f.stack)-1] }

func (f *frame) pushBlock(b block) { f.blocks = append(f.blocks, b) }

func (f *frame) popBlockRaw() block {
	n := len(f.blocks)
	b := f.blocks[n-1]
	f.blocks = f.blocks[:n-1]
	return b
}

// Run executes code against env from its first instruction to
// completion, returning its value (None if it falls off the end
// without an explicit `return`) or the error of an exception that
// propagated out unhandled.
func Run(code *object.Code, env *object.Environment) (object.Value, error) {
	f := &frame{code: code, env: env}
	return runFrame(f)
}

func callFunction(fn *object.Function, args []object.Value) (object.Value, error) {
	if len(args) != len(fn.Code.Params) {
		return nil, object.NewTypeError(fmt.Sprintf("%s() takes %d positional argument(s) but %d were given", fn.Code.Name, len(fn.Code.Params), len(args)))
	}
	if MaxRecursionDepth > 0 && callDepth >= MaxRecursionDepth {
		return nil, object.NewTypeError("maximum recursion depth exceeded")
	}
	callEnv := object.NewChildEnvironment(fn.Env)
	for i, p := range fn.Code.Params {
		callEnv.SetLocal(p, args[i])
	}
	callDepth++
	defer func() { callDepth-- }()
	return Run(fn.Code, callEnv)
}

// runFrame is the dispatch loop. It returns normally on WhyReturn (or
// falling off the end of the instruction stream) and returns an error
// built from the in-flight exception when WhyException escapes every
// block on the frame's own block stack.
func runFrame(f *frame) (object.Value, error) {
	var retVal object.Value = object.None
	var curWhy why
	var curExc object.Value

	for f.pc < len(f.code.Instructions) {
		instr := f.code.Instructions[f.pc]
		thisPC := f.pc
		f.pc++

		var err error
		curWhy, retVal, curExc, err = f.step(instr, thisPC)
		if err != nil {
			if exc, ok := object.AsPyError(err); ok {
				curWhy = whyException
				curExc = exc
			} else {
				return nil, err
			}
		}

		if curWhy == whyNone {
			continue
		}

		stop, result, uerr := f.unwind(curWhy, retVal, curExc)
		if uerr != nil {
			return nil, uerr
		}
		if stop {
			return result, nil
		}
		// handled in place (exception matched by a handler, or
		// break/continue resolved to a jump); keep executing at f.pc.
	}
	return object.None, nil
}

// step executes a single instruction and reports the why state it
// produces (whyNone for ordinary instructions).
func (f *frame) step(instr object.Instruction, pc int) (why, object.Value, object.Value, error) {
	switch instr.Op {
	case object.PopTop:
		f.pop()

	case object.LoadConst:
		f.push(f.code.Consts[instr.Arg])

	case object.LoadName:
		v, err := f.env.Get(instr.Name)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(v)

	case object.StoreName:
		v := f.pop()
		f.env.SetLocal(instr.Name, v)

	case object.BinaryAdd:
		b, a := f.pop(), f.pop()
		v, err := object.Add(a, b)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(v)

	case object.BinaryLt:
		b, a := f.pop(), f.pop()
		v, err := object.Lt(a, b)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(v)

	case object.BinaryEq:
		b, a := f.pop(), f.pop()
		eq, err := object.Equal(a, b)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(object.NewBool(eq))

	case object.MakeFunction:
		codeVal := f.pop()
		code, ok := codeVal.(*object.Code)
		if !ok {
			return whyNone, nil, nil, object.NewTypeError("MakeFunction expects a code constant")
		}
		f.push(&object.Function{Code: code, Env: f.env})

	case object.CallFunctionOp:
		args := make([]object.Value, instr.Arg)
		for i := instr.Arg - 1; i >= 0; i-- {
			args[i] = f.pop()
		}
		callee := f.pop()
		v, err := object.CallValue(callee, args)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(v)

	case object.ReturnValue:
		return whyReturn, f.pop(), nil, nil

	case object.LoadAttr:
		obj := f.pop()
		v, err := object.GetAttr(obj, instr.Name)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(v)

	case object.StoreAttr:
		obj := f.pop()
		val := f.pop()
		if err := object.SetAttr(obj, instr.Name, val); err != nil {
			return whyNone, nil, nil, err
		}

	case object.BinarySubScr:
		index := f.pop()
		container := f.pop()
		v, err := object.Subscript(container, index)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(v)

	case object.StoreSubScr:
		index := f.pop()
		container := f.pop()
		val := f.pop()
		if err := object.StoreSubscript(container, index, val); err != nil {
			return whyNone, nil, nil, err
		}

	case object.BuildList:
		elems := make([]object.Value, instr.Arg)
		for i := instr.Arg - 1; i >= 0; i-- {
			elems[i] = f.pop()
		}
		f.push(object.NewList(elems))

	case object.BuildMap:
		d := object.NewDict()
		pairs := make([][2]object.Value, instr.Arg)
		for i := instr.Arg - 1; i >= 0; i-- {
			v := f.pop()
			k := f.pop()
			pairs[i] = [2]object.Value{k, v}
		}
		for _, p := range pairs {
			h, err := object.HashOf(p[0])
			if err != nil {
				return whyNone, nil, nil, err
			}
			d.Set(p[0], h, p[1])
		}
		f.push(d)

	case object.PopJumpIfTrue:
		cond := f.pop()
		t, err := object.Truthy(cond)
		if err != nil {
			return whyNone, nil, nil, err
		}
		if t {
			f.pc = instr.Arg
		}

	case object.PopJumpIfFalse:
		cond := f.pop()
		t, err := object.Truthy(cond)
		if err != nil {
			return whyNone, nil, nil, err
		}
		if !t {
			f.pc = instr.Arg
		}

	case object.JumpAbsolute:
		f.pc = instr.Arg

	case object.SetupLoop:
		f.pushBlock(block{kind: blockLoop, target: instr.Arg, level: len(f.stack)})

	case object.BreakLoop:
		return whyBreak, nil, nil, nil

	case object.ContinueLoop:
		return whyContinue, object.NewInt(int32(instr.Arg)), nil, nil

	case object.GetIterOp:
		v := f.pop()
		it, err := object.GetIter(v)
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(it)

	case object.ForIter:
		it := f.top()
		v, ok, err := object.IterNext(it)
		if err != nil {
			return whyNone, nil, nil, err
		}
		if !ok {
			f.pop()
			f.pc = instr.Arg
			return whyNone, nil, nil, nil
		}
		f.push(v)

	case object.SetupExcept:
		f.pushBlock(block{kind: blockExcept, target: instr.Arg, level: len(f.stack)})

	case object.Raise:
		excVal := f.pop()
		exc, err := materializeException(excVal)
		if err != nil {
			return whyNone, nil, nil, err
		}
		return whyException, nil, exc, nil

	case object.PopBlock:
		f.popBlockRaw()

	case object.MakeClass:
		bases := make([]*object.Type, instr.Arg)
		for i := instr.Arg - 1; i >= 0; i-- {
			b, ok := f.pop().(*object.Type)
			if !ok {
				return whyNone, nil, nil, object.NewTypeError("class bases must be types")
			}
			bases[i] = b
		}
		codeVal := f.pop()
		bodyCode, ok := codeVal.(*object.Code)
		if !ok {
			return whyNone, nil, nil, object.NewTypeError("MakeClass expects a code constant")
		}
		nameVal := f.pop()
		name, ok := nameVal.(*object.Str)
		if !ok {
			return whyNone, nil, nil, object.NewTypeError("MakeClass expects a class name constant")
		}
		classEnv := object.NewChildEnvironment(f.env)
		if _, err := Run(bodyCode, classEnv); err != nil {
			return whyNone, nil, nil, err
		}
		cls, err := object.NewUserType(name.Value, bases, classEnv.Dict())
		if err != nil {
			return whyNone, nil, nil, err
		}
		f.push(cls)

	default:
		return whyNone, nil, nil, fmt.Errorf("unknown opcode %v", instr.Op)
	}
	return whyNone, nil, nil, nil
}

// materializeException turns a Raise operand into a concrete instance:
// `raise SomeType` instantiates it with no arguments, `raise instance`
// uses it as-is provided it derives from BaseException.
func materializeException(v object.Value) (object.Value, error) {
	if t, ok := v.(*object.Type); ok {
		return object.CallValue(t, nil)
	}
	if !v.TypeOf().IsSubclass(object.BaseExceptionType) {
		return nil, object.NewTypeError("exceptions must derive from BaseException")
	}
	return v, nil
}

// unwind applies block-stack unwinding for a non-normal why state until
// it either resolves in place (a loop break/continue target is found,
// or an exception is caught by a matching except clause — in both
// cases it returns stop=false and the dispatch loop resumes at f.pc)
// or the block stack empties, at which point the frame itself is done:
// stop=true with the frame's return value, or its unhandled exception.
//
// Every block popped here that isn't a loop block resolving a continue
// has its value-stack level truncated back to: a discarded block drops
// whatever it was guarding (a for-loop's iterator, a try body's partial
// expression operands), and a matched except clause restores the depth
// the try body started at before its handler runs.
func (f *frame) unwind(w why, retVal object.Value, exc object.Value) (stop bool, result object.Value, err error) {
	for {
		if len(f.blocks) == 0 {
			switch w {
			case whyReturn:
				return true, retVal, nil
			case whyException:
				return true, nil, &object.PyError{Exc: exc}
			default:
				// break/continue with no enclosing loop cannot happen
				// for a well-formed compile; treat as falling through.
				return true, object.None, nil
			}
		}
		b := f.popBlockRaw()
		switch w {
		case whyBreak:
			if b.kind == blockLoop {
				f.stack = f.stack[:b.level]
				f.pc = b.target
				return false, nil, nil
			}
		case whyContinue:
			if b.kind == blockLoop {
				if target, ok := retVal.(*object.Int); ok {
					f.pc = int(target.Value)
				}
				f.pushBlock(b)
				return false, nil, nil
			}
		case whyException:
			if b.kind == blockExcept {
				if clause, bodyStart, ok := f.matchExceptClause(b.target, exc); ok {
					f.stack = f.stack[:b.level]
					if clause.BindName != "" {
						f.env.SetLocal(clause.BindName, exc)
					}
					f.pc = bodyStart
					return false, nil, nil
				}
			}
		}
		// block discarded without resolving the unwind; drop whatever
		// value-stack state it was guarding along with it.
		f.stack = f.stack[:b.level]
	}
}

// matchExceptClause finds the first except clause of the SetupExcept at
// handlerKey whose declared type the exception instance satisfies.
func (f *frame) matchExceptClause(handlerKey int, exc object.Value) (object.ExceptClause, int, bool) {
	for _, c := range f.code.ExceptTable {
		if c.HandlerKey != handlerKey {
			continue
		}
		if c.TypeName == "" {
			return c, c.BodyStart, true
		}
		typeVal, err := f.env.Get(c.TypeName)
		if err != nil {
			continue
		}
		t, ok := typeVal.(*object.Type)
		if !ok {
			continue
		}
		if exc.TypeOf().IsSubclass(t) {
			return c, c.BodyStart, true
		}
	}
	return object.ExceptClause{}, 0, false
}
