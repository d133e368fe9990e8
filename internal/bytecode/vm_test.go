package bytecode

import (
	"testing"

	"github.com/cwbudde/go-pyvm/internal/builtins"
	"github.com/cwbudde/go-pyvm/internal/compiler"
	"github.com/cwbudde/go-pyvm/internal/lexer"
	"github.com/cwbudde/go-pyvm/internal/object"
	"github.com/cwbudde/go-pyvm/internal/parser"
)

func runSource(t *testing.T, src string) (object.Value, *object.Environment, error) {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	code, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	env := builtins.NewGlobalEnvironment()
	v, err := Run(code, env)
	return v, env, err
}

func mustRunSource(t *testing.T, src string) *object.Environment {
	t.Helper()
	_, env, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected execution error for %q: %v", src, err)
	}
	return env
}

func TestVMAssertPassRunsToCompletion(t *testing.T) {
	mustRunSource(t, "assert 1 == 1\n")
}

func TestVMAssertFailureRaisesAssertionError(t *testing.T) {
	_, _, err := runSource(t, "assert 1 == 2\n")
	if err == nil {
		t.Fatalf("expected a failing assertion to propagate an error")
	}
	exc, ok := object.AsPyError(err)
	if !ok {
		t.Fatalf("expected a PyError, got %v", err)
	}
	if !exc.TypeOf().IsSubclass(object.AssertionErrorType) {
		t.Fatalf("expected AssertionError, got %s", exc.TypeOf().Name)
	}
}

func TestVMWhileLoopAccumulates(t *testing.T) {
	src := "x = 0\ni = 0\nwhile i < 10:\n    x = x + i\n    i = i + 1\nassert x == 45\n"
	mustRunSource(t, src)
}

func TestVMWhileLoopContinueSkipsIteration(t *testing.T) {
	src := "total = 0\ni = 0\nwhile i < 6:\n    i = i + 1\n    if i == 2:\n        continue\n    total = total + i\nassert total == 19\n"
	mustRunSource(t, src)
}

func TestVMForLoopOverList(t *testing.T) {
	src := "total = 0\nfor x in [1, 2, 3, 4]:\n    total = total + x\nassert total == 10\n"
	mustRunSource(t, src)
}

func TestVMBreakExitsLoopEarly(t *testing.T) {
	src := "count = 0\nfor x in [1, 2, 3, 4, 5]:\n    if x == 3:\n        break\n    count = count + 1\nassert count == 2\n"
	mustRunSource(t, src)
}

func TestVMRecursiveFunctionCallsItself(t *testing.T) {
	src := `def fib(n, k, a, b):
    if k == n:
        return a
    return fib(n, k + 1, b, a + b)
assert fib(10, 0, 0, 1) == 55
`
	mustRunSource(t, src)
}

func TestVMClassMethodOverrideViaMRO(t *testing.T) {
	src := `class Animal:
    def speak(self):
        return 0
class Dog(Animal):
    def speak(self):
        return 1
d = Dog()
assert d.speak() == 1
`
	mustRunSource(t, src)
}

func TestVMOperatorOverloadDunderAdd(t *testing.T) {
	src := `class Vec:
    def __init__(self, x):
        self.x = x
    def __add__(self, other):
        return self.x + other.x
a = Vec(3)
b = Vec(4)
assert (a + b) == 7
`
	mustRunSource(t, src)
}

func TestVMDictLiteralSubscriptStoreAndLen(t *testing.T) {
	src := `d = {'a': 1, 'b': 2}
d['c'] = 3
assert len(d) == 3
assert d['c'] == 3
`
	mustRunSource(t, src)
}

func TestVMTryExceptCatchesByTypeName(t *testing.T) {
	src := `caught = False
try:
    raise KeyError('missing')
except KeyError as e:
    caught = True
assert caught == True
`
	env := mustRunSource(t, src)
	v, err := env.Get("caught")
	if err != nil {
		t.Fatalf("unexpected error reading caught: %v", err)
	}
	if b, ok := v.(*object.Bool); !ok || !b.Value {
		t.Fatalf("expected caught to be True, got %v", v)
	}
}

func TestVMTryExceptPropagatesUnmatchedType(t *testing.T) {
	src := "try:\n    raise KeyError('missing')\nexcept TypeError as e:\n    pass_through = True\n"
	_, _, err := runSource(t, src)
	if err == nil {
		t.Fatalf("expected an unmatched exception type to propagate")
	}
	exc, ok := object.AsPyError(err)
	if !ok {
		t.Fatalf("expected a PyError, got %v", err)
	}
	if !exc.TypeOf().IsSubclass(object.KeyErrorType) {
		t.Fatalf("expected the original KeyError to propagate, got %s", exc.TypeOf().Name)
	}
}

func TestVMNestedForLoopBreakDoesNotLeakInnerIterator(t *testing.T) {
	src := `last = 0
for i in [1, 2]:
    for j in [3, 4]:
        break
    last = i
assert last == 2
`
	mustRunSource(t, src)
}

func TestVMExceptionMidExpressionInLoopDoesNotLeakOperands(t *testing.T) {
	src := `count = 0
for i in [1, 2, 3]:
    try:
        x = 1 + [][0]
    except Exception as e:
        count = count + 1
assert count == 3
`
	mustRunSource(t, src)
}

func TestVMTypeAttributeWriteResyncsSlotDispatch(t *testing.T) {
	src := `class C:
    def __add__(self, other):
        return 1
def new_add(self, other):
    return 2
C.__add__ = new_add
a = C()
b = C()
assert (a + b) == 2
`
	mustRunSource(t, src)
}

func TestVMTruthinessFallsBackToLenWhenNoBoolSlot(t *testing.T) {
	src := `class Box:
    def __init__(self, items):
        self.items = items
    def __len__(self):
        return len(self.items)
empty = Box([])
full = Box([1])
assert bool(empty) == False
assert bool(full) == True
`
	mustRunSource(t, src)
}

func TestVMRecursionDepthGuard(t *testing.T) {
	old := MaxRecursionDepth
	MaxRecursionDepth = 50
	defer func() { MaxRecursionDepth = old }()

	src := `def loop(n):
    return loop(n + 1)
loop(0)
`
	_, _, err := runSource(t, src)
	if err == nil {
		t.Fatalf("expected unbounded recursion to hit the depth guard")
	}
	exc, ok := object.AsPyError(err)
	if !ok {
		t.Fatalf("expected a PyError, got %v", err)
	}
	if !exc.TypeOf().IsSubclass(object.TypeErrorType) {
		t.Fatalf("expected TypeError for recursion depth, got %s", exc.TypeOf().Name)
	}
}
