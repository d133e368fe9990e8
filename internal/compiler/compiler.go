// Package compiler lowers an *ast.Program (or a single function/class
// body) into an *object.Code: a flat instruction vector with absolute
// jump targets resolved by backpatching, alongside its constant pool
// and (for try statements) its except-clause side table.
package compiler

import (
	"fmt"

	"github.com/cwbudde/go-pyvm/internal/ast"
	"github.com/cwbudde/go-pyvm/internal/object"
)

// Compiler accumulates the instruction stream and constant pool for one
// Code object. A fresh Compiler is created per function/class body, so
// nested `def`/`class` compile their own Code and splice it into the
// enclosing one as a constant.
type Compiler struct {
	instructions []object.Instruction
	consts       []object.Value
	exceptTable  []object.ExceptClause

	// loopTargets is a stack of (continue target, pending break jumps)
	// entries for the enclosing for/while loops, letting `continue` find the
	// right jump-back target (the loop header for `while`, the ForIter
	// instruction for `for`) without threading it through every
	// recursive call.
	loopTargets []loopTarget
}

type loopTarget struct {
	continueTo int
	breakTo    int   // not set by the compiler; breaks are patched through breakFixup
	breakFixup []int // BreakLoop indices patched once the loop's end is known
}

// New creates a Compiler for one Code object's body.
func New() *Compiler { return &Compiler{} }

// Compile lowers a top-level program into a runnable Code object named
// "<module>", with no parameters.
func Compile(prog *ast.Program) (*object.Code, error) {
	c := New()
	if err := c.compileStmts(prog.Statements); err != nil {
		return nil, err
	}
	c.emit(object.LoadConst, c.constIndex(object.None), "")
	c.emit(object.ReturnValue, 0, "")
	return c.code("<module>", nil), nil
}

func (c *Compiler) code(name string, params []string) *object.Code {
	return &object.Code{
		Name:         name,
		Params:       params,
		Instructions: c.instructions,
		Consts:       c.consts,
		ExceptTable:  c.exceptTable,
	}
}

func (c *Compiler) emit(op object.OpCode, arg int, name string) int {
	c.instructions = append(c.instructions, object.Instruction{Op: op, Arg: arg, Name: name})
	return len(c.instructions) - 1
}

func (c *Compiler) here() int { return len(c.instructions) }

func (c *Compiler) patchArg(pc int, arg int) {
	c.instructions[pc].Arg = arg
}

func (c *Compiler) constIndex(v object.Value) int {
	c.consts = append(c.consts, v)
	return len(c.consts) - 1
}

func (c *Compiler) compileStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.emit(object.PopTop, 0, "")

	case *ast.Assign:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		return c.compileAssignTarget(n.Target)

	case *ast.Return:
		if n.Value == nil {
			c.emit(object.LoadConst, c.constIndex(object.None), "")
		} else if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.emit(object.ReturnValue, 0, "")

	case *ast.Break:
		if len(c.loopTargets) == 0 {
			return fmt.Errorf("%s: 'break' outside loop", n.Position())
		}
		pc := c.emit(object.BreakLoop, 0, "")
		top := &c.loopTargets[len(c.loopTargets)-1]
		top.breakFixup = append(top.breakFixup, pc)

	case *ast.Continue:
		if len(c.loopTargets) == 0 {
			return fmt.Errorf("%s: 'continue' outside loop", n.Position())
		}
		top := c.loopTargets[len(c.loopTargets)-1]
		c.emit(object.ContinueLoop, top.continueTo, "")

	case *ast.Assert:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		okJump := c.emit(object.PopJumpIfTrue, 0, "")
		c.emit(object.LoadName, 0, "AssertionError")
		c.emit(object.CallFunctionOp, 0, "")
		c.emit(object.Raise, 0, "")
		c.patchArg(okJump, c.here())

	case *ast.Raise:
		if err := c.compileExpr(n.X); err != nil {
			return err
		}
		c.emit(object.Raise, 0, "")

	case *ast.If:
		return c.compileIf(n)

	case *ast.While:
		return c.compileWhile(n)

	case *ast.For:
		return c.compileFor(n)

	case *ast.FunctionDef:
		return c.compileFunctionDef(n)

	case *ast.ClassDef:
		return c.compileClassDef(n)

	case *ast.Try:
		return c.compileTry(n)

	default:
		return fmt.Errorf("%s: unsupported statement %T", s.Position(), s)
	}
	return nil
}

func (c *Compiler) compileAssignTarget(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.Variable:
		c.emit(object.StoreName, 0, t.Name)
	case *ast.Attribute:
		if err := c.compileExpr(t.Value); err != nil {
			return err
		}
		c.emit(object.StoreAttr, 0, t.Name)
	case *ast.Subscript:
		if err := c.compileExpr(t.Value); err != nil {
			return err
		}
		if err := c.compileExpr(t.Index); err != nil {
			return err
		}
		c.emit(object.StoreSubScr, 0, "")
	default:
		return fmt.Errorf("%s: invalid assignment target %T", target.Position(), target)
	}
	return nil
}

func (c *Compiler) compileIf(n *ast.If) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	elseJump := c.emit(object.PopJumpIfFalse, 0, "")
	if err := c.compileStmts(n.Body); err != nil {
		return err
	}
	endJump := c.emit(object.JumpAbsolute, 0, "")
	c.patchArg(elseJump, c.here())
	if err := c.compileStmts(n.OrElse); err != nil {
		return err
	}
	c.patchArg(endJump, c.here())
	return nil
}

func (c *Compiler) compileWhile(n *ast.While) error {
	setupPC := c.emit(object.SetupLoop, 0, "")
	header := c.here()
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	exitJump := c.emit(object.PopJumpIfFalse, 0, "")

	c.loopTargets = append(c.loopTargets, loopTarget{continueTo: header})
	if err := c.compileStmts(n.Body); err != nil {
		return err
	}
	top := c.loopTargets[len(c.loopTargets)-1]
	c.loopTargets = c.loopTargets[:len(c.loopTargets)-1]

	c.emit(object.JumpAbsolute, header, "")
	c.patchArg(exitJump, c.here())
	c.emit(object.PopBlock, 0, "")
	end := c.here()
	c.patchArg(setupPC, end)
	for _, pc := range top.breakFixup {
		c.patchArg(pc, end)
	}
	return nil
}

func (c *Compiler) compileFor(n *ast.For) error {
	// SetupLoop is pushed before the iterable is even evaluated, so its
	// recorded value-stack level sits below the iterator GetIterOp is
	// about to push: a break unwinding to that level drops the iterator
	// along with it instead of leaking it onto the enclosing scope.
	setupPC := c.emit(object.SetupLoop, 0, "")
	if err := c.compileExpr(n.Iter); err != nil {
		return err
	}
	c.emit(object.GetIterOp, 0, "")
	header := c.here()
	exitJump := c.emit(object.ForIter, 0, "")
	c.emit(object.StoreName, 0, n.Target)

	c.loopTargets = append(c.loopTargets, loopTarget{continueTo: header})
	if err := c.compileStmts(n.Body); err != nil {
		return err
	}
	top := c.loopTargets[len(c.loopTargets)-1]
	c.loopTargets = c.loopTargets[:len(c.loopTargets)-1]

	c.emit(object.JumpAbsolute, header, "")
	c.patchArg(exitJump, c.here())
	c.emit(object.PopBlock, 0, "")
	end := c.here()
	c.patchArg(setupPC, end)
	for _, pc := range top.breakFixup {
		c.patchArg(pc, end)
	}
	return nil
}

func (c *Compiler) compileFunctionDef(n *ast.FunctionDef) error {
	body := New()
	if err := body.compileStmts(n.Body); err != nil {
		return err
	}
	body.emit(object.LoadConst, body.constIndex(object.None), "")
	body.emit(object.ReturnValue, 0, "")
	code := body.code(n.Name, n.Params)

	c.emit(object.LoadConst, c.constIndex(code), "")
	c.emit(object.MakeFunction, 0, "")
	c.emit(object.StoreName, 0, n.Name)
	return nil
}

func (c *Compiler) compileClassDef(n *ast.ClassDef) error {
	body := New()
	if err := body.compileStmts(n.Body); err != nil {
		return err
	}
	body.emit(object.LoadConst, body.constIndex(object.None), "")
	body.emit(object.ReturnValue, 0, "")
	code := body.code(n.Name, nil)

	c.emit(object.LoadConst, c.constIndex(object.NewStr(n.Name)), "")
	c.emit(object.LoadConst, c.constIndex(code), "")
	for _, b := range n.Bases {
		if err := c.compileExpr(b); err != nil {
			return err
		}
	}
	c.emit(object.MakeClass, len(n.Bases), "")
	c.emit(object.StoreName, 0, n.Name)
	return nil
}

func (c *Compiler) compileTry(n *ast.Try) error {
	handlerKey := c.here()
	c.emit(object.SetupExcept, handlerKey, "")

	if err := c.compileStmts(n.Body); err != nil {
		return err
	}
	c.emit(object.PopBlock, 0, "")
	endJump := c.emit(object.JumpAbsolute, 0, "")

	var handlerEnds []int
	for _, clause := range n.Handler {
		bodyStart := c.here()
		typeName := ""
		if clause.Type != nil {
			v, ok := clause.Type.(*ast.Variable)
			if !ok {
				return fmt.Errorf("%s: except clause type must be a name", clause.Type.Position())
			}
			typeName = v.Name
		}
		c.exceptTable = append(c.exceptTable, object.ExceptClause{
			HandlerKey: handlerKey,
			TypeName:   typeName,
			BindName:   clause.Name,
			BodyStart:  bodyStart,
		})
		if err := c.compileStmts(clause.Body); err != nil {
			return err
		}
		handlerEnds = append(handlerEnds, c.emit(object.JumpAbsolute, 0, ""))
	}

	end := c.here()
	c.patchArg(endJump, end)
	for _, pc := range handlerEnds {
		c.patchArg(pc, end)
	}
	return nil
}
