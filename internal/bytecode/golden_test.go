package bytecode

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cwbudde/go-pyvm/internal/object"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestGoldenScenarios snapshots the final bindings of a handful of small
// programs chosen to each exercise a different corner of the object model
// and VM: while/for loops, recursion, class dispatch through the MRO, an
// operator-overload dunder, dict subscript plumbing, try/except and break.
// Grounded on the same snapshot-per-fixture pattern the
// rest of the corpus uses for interpreter regression coverage.
func TestGoldenScenarios(t *testing.T) {
	scenarios := []struct {
		name string
		src  string
		vars []string
	}{
		{
			name: "while_accumulation",
			src:  "x = 0\ni = 0\nwhile i < 10:\n    x = x + i\n    i = i + 1\n",
			vars: []string{"x", "i"},
		},
		{
			name: "for_loop_sum",
			src:  "total = 0\nfor v in [1, 2, 3, 4, 5]:\n    total = total + v\n",
			vars: []string{"total"},
		},
		{
			name: "recursive_fibonacci",
			src: `def fib(n, k, a, b):
    if k == n:
        return a
    return fib(n, k + 1, b, a + b)
result = fib(10, 0, 0, 1)
`,
			vars: []string{"result"},
		},
		{
			name: "class_method_override",
			src: `class Animal:
    def speak(self):
        return 0
class Dog(Animal):
    def speak(self):
        return 1
pet = Dog()
sound = pet.speak()
`,
			vars: []string{"sound"},
		},
		{
			name: "operator_overload_add",
			src: `class Vec:
    def __init__(self, x):
        self.x = x
    def __add__(self, other):
        return self.x + other.x
a = Vec(3)
b = Vec(4)
total = a + b
`,
			vars: []string{"total"},
		},
		{
			name: "dict_literal_subscript_len",
			src: `d = {'a': 1, 'b': 2}
d['c'] = 3
size = len(d)
c_val = d['c']
`,
			vars: []string{"size", "c_val"},
		},
		{
			name: "try_except_catches_keyerror",
			src: `caught = False
try:
    raise KeyError('missing')
except KeyError as e:
    caught = True
`,
			vars: []string{"caught"},
		},
		{
			name: "break_exits_early",
			src: `count = 0
for v in [1, 2, 3, 4, 5]:
    if v == 3:
        break
    count = count + 1
`,
			vars: []string{"count"},
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			env := mustRunSource(t, sc.src)
			var parts []string
			for _, name := range sc.vars {
				v, err := env.Get(name)
				if err != nil {
					t.Fatalf("unexpected error reading %s: %v", name, err)
				}
				parts = append(parts, fmt.Sprintf("%s=%s", name, object.Repr(v)))
			}
			snaps.MatchSnapshot(t, sc.name, strings.Join(parts, " "))
		})
	}
}
