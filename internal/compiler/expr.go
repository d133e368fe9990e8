package compiler

import (
	"fmt"

	"github.com/cwbudde/go-pyvm/internal/ast"
	"github.com/cwbudde/go-pyvm/internal/object"
)

func (c *Compiler) compileExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Variable:
		c.emit(object.LoadName, 0, n.Name)

	case *ast.IntLit:
		c.emit(object.LoadConst, c.constIndex(object.NewInt(n.Value)), "")

	case *ast.BoolLit:
		c.emit(object.LoadConst, c.constIndex(object.NewBool(n.Value)), "")

	case *ast.StrLit:
		c.emit(object.LoadConst, c.constIndex(object.NewStr(n.Value)), "")

	case *ast.NoneLit:
		c.emit(object.LoadConst, c.constIndex(object.None), "")

	case *ast.BinOp:
		if err := c.compileExpr(n.Left); err != nil {
			return err
		}
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		switch n.Op {
		case ast.OpAdd:
			c.emit(object.BinaryAdd, 0, "")
		case ast.OpLt:
			c.emit(object.BinaryLt, 0, "")
		case ast.OpEq:
			c.emit(object.BinaryEq, 0, "")
		default:
			return fmt.Errorf("%s: unknown binary operator", n.Position())
		}

	case *ast.Call:
		if err := c.compileExpr(n.Func); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.emit(object.CallFunctionOp, len(n.Args), "")

	case *ast.Attribute:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.emit(object.LoadAttr, 0, n.Name)

	case *ast.Subscript:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		if err := c.compileExpr(n.Index); err != nil {
			return err
		}
		c.emit(object.BinarySubScr, 0, "")

	case *ast.ListLit:
		for _, el := range n.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.emit(object.BuildList, len(n.Elements), "")

	case *ast.DictLit:
		for _, entry := range n.Entries {
			if err := c.compileExpr(entry.Key); err != nil {
				return err
			}
			if err := c.compileExpr(entry.Value); err != nil {
				return err
			}
		}
		c.emit(object.BuildMap, len(n.Entries), "")

	default:
		return fmt.Errorf("%s: unsupported expression %T", e.Position(), e)
	}
	return nil
}
