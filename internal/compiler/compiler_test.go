package compiler

import (
	"testing"

	"github.com/cwbudde/go-pyvm/internal/lexer"
	"github.com/cwbudde/go-pyvm/internal/object"
	"github.com/cwbudde/go-pyvm/internal/parser"
)

func compileOK(t *testing.T, src string) *object.Code {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	code, err := Compile(prog)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return code
}

func ops(code *object.Code) []object.OpCode {
	out := make([]object.OpCode, len(code.Instructions))
	for i, instr := range code.Instructions {
		out[i] = instr.Op
	}
	return out
}

func countOp(code *object.Code, op object.OpCode) int {
	n := 0
	for _, instr := range code.Instructions {
		if instr.Op == op {
			n++
		}
	}
	return n
}

func TestCompileAssertEmitsGuardedRaise(t *testing.T) {
	code := compileOK(t, "assert 1 == 1\n")
	got := ops(code)
	want := []object.OpCode{
		object.LoadConst, object.LoadConst, object.BinaryEq,
		object.PopJumpIfTrue, object.LoadName, object.CallFunctionOp, object.Raise,
		object.LoadConst, object.ReturnValue,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d instructions %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d: got %v want %v (full: %v)", i, got[i], want[i], got)
		}
	}
	raiseJump := code.Instructions[3]
	if raiseJump.Arg != 7 {
		t.Fatalf("expected PopJumpIfTrue to target index 7 (past the raise), got %d", raiseJump.Arg)
	}
}

func TestCompileWhileContinueTargetsConditionNotSetupLoop(t *testing.T) {
	// The loop header a `continue` jumps back to must be the condition
	// check, not the SetupLoop instruction itself - landing back on
	// SetupLoop would push a second block on every iteration.
	src := "i = 0\nwhile i < 3:\n    i = i + 1\n    continue\n"
	code := compileOK(t, src)

	setupIdx := -1
	continueIdx := -1
	for i, instr := range code.Instructions {
		if instr.Op == object.SetupLoop {
			setupIdx = i
		}
		if instr.Op == object.ContinueLoop {
			continueIdx = i
		}
	}
	if setupIdx == -1 || continueIdx == -1 {
		t.Fatalf("expected both SetupLoop and ContinueLoop in %v", ops(code))
	}
	target := code.Instructions[continueIdx].Arg
	if target == setupIdx {
		t.Fatalf("continue target must not be the SetupLoop instruction itself (got %d == setupIdx)", target)
	}
	if code.Instructions[target].Op != object.LoadName && code.Instructions[target].Op != object.LoadConst {
		t.Fatalf("expected continue target to land on the condition evaluation, got op %v at %d", code.Instructions[target].Op, target)
	}
}

func TestCompileForLoopUsesGetIterAndForIter(t *testing.T) {
	code := compileOK(t, "total = 0\nfor x in items:\n    total = total + x\n")
	got := ops(code)
	sawGetIter, sawForIter, sawSetupLoop, sawPopBlock := false, false, false, false
	for _, op := range got {
		switch op {
		case object.GetIterOp:
			sawGetIter = true
		case object.ForIter:
			sawForIter = true
		case object.SetupLoop:
			sawSetupLoop = true
		case object.PopBlock:
			sawPopBlock = true
		}
	}
	if !sawGetIter || !sawForIter || !sawSetupLoop || !sawPopBlock {
		t.Fatalf("expected GetIter/ForIter/SetupLoop/PopBlock all present, got %v", got)
	}
}

func TestCompileBreakPatchesToLoopEnd(t *testing.T) {
	code := compileOK(t, "while True:\n    x = 1\n    break\n")
	breakIdx := -1
	popBlockIdx := -1
	for i, instr := range code.Instructions {
		if instr.Op == object.BreakLoop {
			breakIdx = i
		}
		if instr.Op == object.PopBlock {
			popBlockIdx = i
		}
	}
	if breakIdx == -1 || popBlockIdx == -1 {
		t.Fatalf("expected BreakLoop and PopBlock, got %v", ops(code))
	}
	if code.Instructions[breakIdx].Arg != popBlockIdx+1 {
		t.Fatalf("expected BreakLoop to target %d (after PopBlock), got %d", popBlockIdx+1, code.Instructions[breakIdx].Arg)
	}
}

func TestCompileFunctionDefProducesNestedCode(t *testing.T) {
	code := compileOK(t, "def add(a, b):\n    return a + b\n")
	if countOp(code, object.MakeFunction) != 1 {
		t.Fatalf("expected exactly one MakeFunction, got %v", ops(code))
	}
	var nested *object.Code
	for _, c := range code.Consts {
		if fc, ok := c.(*object.Code); ok {
			nested = fc
		}
	}
	if nested == nil {
		t.Fatalf("expected a nested Code constant for the function body")
	}
	if nested.Name != "add" || len(nested.Params) != 2 {
		t.Fatalf("expected code named add with 2 params, got name=%s params=%v", nested.Name, nested.Params)
	}
}

func TestCompileClassDefEmitsMakeClassWithBaseCount(t *testing.T) {
	code := compileOK(t, "class A:\n    x = 1\nclass B(A):\n    y = 2\n")
	found := countOp(code, object.MakeClass)
	if found != 2 {
		t.Fatalf("expected two MakeClass instructions, got %d (%v)", found, ops(code))
	}
	// the second class (B(A)) must carry a base count of 1.
	var sawOneBase bool
	for _, instr := range code.Instructions {
		if instr.Op == object.MakeClass && instr.Arg == 1 {
			sawOneBase = true
		}
	}
	if !sawOneBase {
		t.Fatalf("expected a MakeClass with Arg=1 for B(A)")
	}
}

func TestCompileTryBuildsExceptTableEntry(t *testing.T) {
	code := compileOK(t, "try:\n    raise Exception('boom')\nexcept Exception as e:\n    pass\n")
	if len(code.ExceptTable) != 1 {
		t.Fatalf("expected one except-table entry, got %d", len(code.ExceptTable))
	}
	entry := code.ExceptTable[0]
	if entry.TypeName != "Exception" || entry.BindName != "e" {
		t.Fatalf("expected TypeName=Exception BindName=e, got %+v", entry)
	}
	if code.Instructions[entry.HandlerKey].Op != object.SetupExcept {
		t.Fatalf("expected HandlerKey to point at the SetupExcept instruction")
	}
	if code.Instructions[entry.BodyStart].Op == object.SetupExcept {
		t.Fatalf("BodyStart should not be the SetupExcept instruction itself")
	}
}

func TestCompileBreakOutsideLoopIsAnError(t *testing.T) {
	p := parser.New(lexer.New("break\n"))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	if _, err := Compile(prog); err == nil {
		t.Fatalf("expected a compile error for break outside a loop")
	}
}

func TestCompileDictAndSubscriptStore(t *testing.T) {
	code := compileOK(t, "d = {}\nd['k'] = 1\n")
	got := ops(code)
	sawBuildMap, sawStoreSubScr := false, false
	for _, op := range got {
		if op == object.BuildMap {
			sawBuildMap = true
		}
		if op == object.StoreSubScr {
			sawStoreSubScr = true
		}
	}
	if !sawBuildMap || !sawStoreSubScr {
		t.Fatalf("expected BuildMap and StoreSubScr, got %v", got)
	}
}
