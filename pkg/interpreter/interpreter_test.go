package interpreter

import (
	"strings"
	"testing"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func TestTruthiness(t *testing.T) {
	_, out := mustRun(t, `
class C {}
fun f() {}
print !nil;
print !false;
print !0;
print !"";
print !C();
print !f;
print !true;
`)
	want := "true\ntrue\nfalse\nfalse\nfalse\nfalse\nfalse\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestStringConcatenation(t *testing.T) {
	_, out := mustRun(t, `print "a" + 1; print 1 + "a"; print 1 + 2; print "x" + nil + true;`)
	want := "a1\n1a\n3\nxniltrue\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestLogicalOperatorsYieldOperands(t *testing.T) {
	_, out := mustRun(t, `print nil or "yes"; print "first" or "second"; print false and 1; print 1 and 2;`)
	want := "yes\nfirst\nfalse\n2\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestEqualityAndArithmetic(t *testing.T) {
	_, out := mustRun(t, `
print nil == nil;
print nil == false;
print 1 == 1;
print "a" == "a";
print 1 == "1";
print 10 / 4;
print -(3 - 5) * 2;
print 0 / 0 == 0 / 0;
print 2 >= 2 and 1 < 2;
`)
	want := "true\nfalse\ntrue\ntrue\nfalse\n2.5\n4\ntrue\ntrue\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestInheritanceDispatchesThroughSuper(t *testing.T) {
	_, out := mustRun(t, `
class A { m() { print "A"; } }
class B < A { m() { super.m(); print "B"; } }
class C < B {}
B().m();
C().m();
`)
	want := "A\nB\nA\nB\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestSuperIsStaticNotReceiverBased(t *testing.T) {
	_, out := mustRun(t, `
class A { method() { print "A method"; } }
class B < A {
  method() { print "B method"; }
  test() { super.method(); }
}
class C < B {}
C().test();
`)
	if out != "A method\n" {
		t.Fatalf("expected A method, got %q", out)
	}
}

func TestClosuresCaptureDefinitionEnvironment(t *testing.T) {
	_, out := mustRun(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var c = makeCounter();
c();
print c();
var a = "global";
{
  fun show() { print a; }
  show();
  var a = "block";
  show();
}
`)
	want := "2\nglobal\nglobal\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestInitializerAlwaysYieldsInstance(t *testing.T) {
	_, out := mustRun(t, `
class P {
  init(x) { this.x = x; if (x > 1) return; this.x = -1; }
}
var p = P(5);
print p.x;
print P(0).x;
print p.init(9) == p;
print p.x;
`)
	want := "5\n-1\ntrue\n9\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestFieldsShadowMethodsAndBindFresh(t *testing.T) {
	_, out := mustRun(t, `
class Box {
  get() { return this.v; }
}
var b = Box();
b.v = 3;
var g = b.get;
print g();
print b.get == b.get;
b.get = "field";
print b.get;
`)
	want := "3\nfalse\nfield\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestStringifyCallables(t *testing.T) {
	_, out := mustRun(t, `
fun f() {}
class K { m() {} }
print f;
print clock;
print K;
print K();
print K().m;
print 1.50;
`)
	want := "<fn f>\n<native fn>\nK\nK instance\n<fn m>\n1.5\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestClockNative(t *testing.T) {
	fixed := time.Unix(1700000000, 500000000)
	_, out := mustRun(t, "print clock();", WithClock(func() time.Time { return fixed }))
	if out != "1700000000.5\n" {
		t.Fatalf("unexpected clock output %q", out)
	}
}

func TestForLoopAndWhile(t *testing.T) {
	_, out := mustRun(t, `
var total = 0;
for (var i = 0; i < 4; i = i + 1) total = total + i;
print total;
var n = 3;
while (n > 0) n = n - 1;
print n;
`)
	if out != "6\n0\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestResolvedDistancesMatchRuntimeFrames(t *testing.T) {
	var accesses []LocalAccess
	mustRun(t, `
fun outer(a) {
  var b = a + 1;
  {
    var c = b + 1;
    fun inner(d) {
      { var e = d; return a + b + c + d + e; }
    }
    return inner(c);
  }
}
print outer(1);
class A { get() { return this.v; } set(v) { this.v = v; } }
class B < A { get() { var r = super.get(); { return r; } } }
var x = B();
x.set(4);
print x.get();
for (var i = 0; i < 2; i = i + 1) { var j = i; { print j + i; } }
tailrec fun walk(n, acc) {
  var seen;
  seen = n;
  if (n > 0) {
    var half = n / 2;
    { var next = n - 1; walk(next, acc + half + seen); }
  } else {
    print acc;
  }
}
walk(4, 0);
`, WithLocalAccessObserver(func(access LocalAccess) {
		accesses = append(accesses, access)
	}))
	if len(accesses) == 0 {
		t.Fatalf("expected resolved accesses")
	}
	for _, access := range accesses {
		if access.Depth != access.Distance {
			t.Fatalf("%s at line %d: resolved distance %d, frame walk %d", access.Name, access.Line, access.Distance, access.Depth)
		}
	}
}

func TestInterpretMergesResolutionsAcrossCalls(t *testing.T) {
	interp := New(WithOutput(&strings.Builder{}))
	ref := ast.ID("x")
	interp.Resolve(map[ast.Expression]int{ref: 0})
	env := runtime.NewEnvironment(interp.GlobalEnvironment())
	env.Define("x", runtime.NumberValue{Val: 2})
	val, err := interp.evaluateExpression(ref, env)
	if err != nil || val.(runtime.NumberValue).Val != 2 {
		t.Fatalf("expected local lookup, got %#v (%v)", val, err)
	}
	other := ast.ID("x")
	if _, err := interp.evaluateExpression(other, env); err == nil {
		t.Fatalf("expected unresolved reference to be looked up globally and fail")
	}
}
