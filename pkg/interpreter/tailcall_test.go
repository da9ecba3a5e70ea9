package interpreter

import (
	"errors"
	"strings"
	"testing"
)

const (
	prefixThenFallthrough = `
var x = 0;
var y = 0;
var z = 0;
fun foo(acc, n) {
  x = x + 1;
  if (n == 0) {
    y = y + 1;
    return acc;
  }
  z = z + 1;
  return foo(2 * acc, n - 1);
}
var result = foo(1, 10);
`
	callInElse = `
var x = 0;
var y = 0;
var z = 0;
fun foo(acc, n) {
  x = x + 1;
  if (n == 0) {
    y = y + 1;
    return acc;
  } else {
    z = z + 1;
    return foo(2 * acc, n - 1);
  }
}
var result = foo(1, 10);
`
	callInThen = `
var x = 0;
var y = 0;
var z = 0;
fun foo(acc, n) {
  x = x + 1;
  if (n > 0) {
    z = z + 1;
    return foo(2 * acc, n - 1);
  } else {
    y = y + 1;
    return acc;
  }
}
var result = foo(1, 10);
`
	bareCall = `
var x = 0;
var y = 0;
var z = 0;
fun foo(acc, n) {
  x = x + 1;
  if (n == 0) {
    y = y + 1;
    return acc;
  }
  z = z + 1;
  foo(2 * acc, n - 1);
}
var result = foo(1, <iter>);
`
)

func markTailRec(source string) string {
	return strings.Replace(source, "fun foo", "tailrec fun foo", 1)
}

func assertCounters(t *testing.T, source string, want map[string]float64) {
	t.Helper()
	interp, _ := mustRun(t, source)
	for name, value := range want {
		if got := globalNumber(t, interp, name); got != value {
			t.Fatalf("%s: expected %v, got %v", name, value, got)
		}
	}
}

func TestTailRecMatchesPlainRecursion(t *testing.T) {
	cases := map[string]string{
		"prefix then fallthrough call": prefixThenFallthrough,
		"call in else branch":          callInElse,
		"call in then branch":          callInThen,
	}
	want := map[string]float64{"x": 11, "y": 1, "z": 10, "result": 1024}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			assertCounters(t, source, want)
			assertCounters(t, markTailRec(source), want)
		})
	}
}

func TestTailRecBareCall(t *testing.T) {
	source := strings.Replace(bareCall, "<iter>", "10", 1)
	want := map[string]float64{"x": 11, "y": 1, "z": 10}
	assertCounters(t, source, want)
	assertCounters(t, markTailRec(source), want)
}

func TestTailRecRunsPastTheCallDepthLimit(t *testing.T) {
	source := strings.Replace(bareCall, "<iter>", "2000", 1)

	_, _, err := runSource(t, source)
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Message != "Stack overflow." {
		t.Fatalf("expected plain recursion to overflow, got %v", err)
	}

	assertCounters(t, markTailRec(source), map[string]float64{"x": 2001, "y": 1, "z": 2000})
}

func TestTailRecCountdownLoop(t *testing.T) {
	mustRun(t, `
tailrec fun loop(n) {
  if (n > 0) loop(n - 1);
}
loop(2000);
`)
}

func TestTailRecRebindsParametersSimultaneously(t *testing.T) {
	_, out := mustRun(t, `
tailrec fun fib(n, a, b) {
  if (n == 0) return a;
  return fib(n - 1, b, a + b);
}
tailrec fun swap(n, a, b) {
  if (n == 0) { print a + "," + b; return; }
  swap(n - 1, b, a);
}
print fib(50, 0, 1);
swap(3, "l", "r");
`)
	want := "12586269025\nr,l\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestTailRecPreCallLocals(t *testing.T) {
	source := `
tailrec fun walk(n, acc) {
  var seen = n;
  if (n > 0) {
    var half = n / 2;
    var next = n - 1;
    return walk(next, acc + half + seen);
  } else {
    return acc;
  }
}
print walk(4, 0);
`
	_, plain := mustRun(t, strings.Replace(source, "tailrec fun", "fun", 1))
	_, rewritten := mustRun(t, source)
	if plain != "15\n" || rewritten != plain {
		t.Fatalf("expected 15 from both, got %q and %q", plain, rewritten)
	}
}

func TestTailRecClosuresCaptureEachIteration(t *testing.T) {
	_, out := mustRun(t, `
var last = nil;
tailrec fun collect(n) {
  if (n > 0) {
    var captured = n;
    fun get() { return captured; }
    last = get;
    collect(n - 1);
  }
}
collect(3);
print last();
`)
	if out != "1\n" {
		t.Fatalf("expected 1, got %q", out)
	}
}

func TestTailRecNestedShadowingMatchesPlainRecursion(t *testing.T) {
	source := `
tailrec fun f(n) {
  if (n > 0) {
    var a = n;
    { var b = a; var a = b - 1; print a; f(a); }
  }
}
f(3);
`
	_, plain := mustRun(t, strings.Replace(source, "tailrec fun", "fun", 1))
	_, rewritten := mustRun(t, source)
	if plain != "2\n1\n0\n" || rewritten != plain {
		t.Fatalf("expected 2,1,0 from both, got %q and %q", plain, rewritten)
	}
}

func TestTailRecPrefixDeclarationIsUninitializedEachPass(t *testing.T) {
	source := `
tailrec fun f(n) {
  var x;
  if (n > 1) {
    if (n == 2) print x;
    x = 1;
    f(n - 1);
  }
}
f(3);
`
	for _, src := range []string{source, strings.Replace(source, "tailrec fun", "fun", 1)} {
		_, out, err := runSource(t, src)
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) || rtErr.Message != "Variable 'x' is not initialized." {
			t.Fatalf("expected uninitialized read, got %v (output %q)", err, out)
		}
		if out != "" {
			t.Fatalf("unexpected output %q", out)
		}
	}
}
