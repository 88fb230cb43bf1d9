package syntax

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const printSrc = `int main(int n) {
  if (n < 2) return n;
  for (i = 0; ; ) x = -1;
  return f(n);
}
`

func TestFprint(t *testing.T) {
	m := parseModule(t, printSrc)

	var buf bytes.Buffer
	Fprint(&buf, m)

	want := `Module test.c:1:1
  FuncDecl test.c:1:1
    Name: main
    Param test.c:1:10 n int
    Result: int
    Body:
      IfStmt test.c:2:3
        Cond:
          BinaryExpr test.c:2:7 Lt
            Name test.c:2:7 n
            NumberLit test.c:2:11 2
        Then:
          ReturnStmt test.c:2:14
            Name test.c:2:21 n
      ForStmt test.c:3:3
        Init:
          BinaryExpr test.c:3:8 Assign
            Name test.c:3:8 i
            NumberLit test.c:3:12 0
        Body:
          ExprStmt test.c:3:19
            BinaryExpr test.c:3:19 Assign
              Name test.c:3:19 x
              UnaryExpr test.c:3:23 Minus
                NumberLit test.c:3:24 1
      ReturnStmt test.c:4:3
        CallExpr test.c:4:10 f
          Name test.c:4:12 n
`
	if diff := cmp.Diff(strings.Split(want, "\n"), strings.Split(buf.String(), "\n")); diff != "" {
		t.Errorf("Fprint mismatch (-want +got):\n%s", diff)
	}
}

func TestStringNil(t *testing.T) {
	assert.Equal(t, "<nil>", String(nil))
}

func TestFprintJSON(t *testing.T) {
	m := parseModule(t, "int f(int a) { if (a) {} else { return; } }")

	var buf bytes.Buffer
	require.NoError(t, FprintJSON(&buf, m))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "Module", got["type"])
	stmts := got["stmts"].([]interface{})
	require.Len(t, stmts, 1)

	fn := stmts[0].(map[string]interface{})
	assert.Equal(t, "FuncDecl", fn["type"])
	assert.Equal(t, "f", fn["name"])
	assert.Equal(t, "int", fn["result"])
	assert.Equal(t, "test.c:1:1", fn["pos"])

	params := fn["params"].([]interface{})
	require.Len(t, params, 1)
	assert.Equal(t, "a", params[0].(map[string]interface{})["name"])

	ifs := fn["body"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "IfStmt", ifs["type"])
	assert.Equal(t, []interface{}{}, ifs["then"])
	elseBranch := ifs["else"].([]interface{})
	require.Len(t, elseBranch, 1)
	ret := elseBranch[0].(map[string]interface{})
	assert.Equal(t, "ReturnStmt", ret["type"])
	_, hasResult := ret["result"]
	assert.False(t, hasResult)
}

func TestWalkOrder(t *testing.T) {
	m := parseModule(t, "int g(int p) { for (i = 1; i < p; i += 1) h(i, 2); return -p; }")

	var got []string
	Inspect(m, func(n Node) bool {
		switch n := n.(type) {
		case *Name:
			got = append(got, n.Value)
		case *NumberLit:
			got = append(got, n.Lit)
		case *Param:
			got = append(got, "param:"+n.Name)
		case *CallExpr:
			got = append(got, "call:"+n.Name)
		}
		return true
	})

	want := []string{
		"param:p",
		"i", "1", // init
		"i", "p", // cond
		"call:h", "i", "2", // body
		"i", "1", // post
		"p", // return
	}
	assert.Equal(t, want, got)
}

func TestWalkPrune(t *testing.T) {
	m := parseModule(t, "int a() { x = 1; } int b() { y = 2; }")

	var names []string
	Walk(m, func(n Node) bool {
		if fn, ok := n.(*FuncDecl); ok && fn.Name == "a" {
			return false
		}
		if id, ok := n.(*Name); ok {
			names = append(names, id.Value)
		}
		return true
	})
	assert.Equal(t, []string{"y"}, names)
}
