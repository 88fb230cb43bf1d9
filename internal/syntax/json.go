package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Module:
		return map[string]interface{}{
			"type":  "Module",
			"pos":   n.pos.String(),
			"stmts": mapSlice(n.Stmts, stmtJSON),
		}

	case *FuncDecl:
		return map[string]interface{}{
			"type":   "FuncDecl",
			"pos":    n.pos.String(),
			"name":   n.Name,
			"params": mapSlice(n.Params, func(f *Param) interface{} { return toJSON(f) }),
			"result": n.Result.String(),
			"body":   mapSlice(n.Body, stmtJSON),
		}

	case *Param:
		return map[string]interface{}{
			"type":      "Param",
			"pos":       n.pos.String(),
			"name":      n.Name,
			"paramtype": n.Type.String(),
		}

	case *ExprStmt:
		return map[string]interface{}{
			"type": "ExprStmt",
			"pos":  n.pos.String(),
			"x":    toJSON(n.X),
		}

	case *IfStmt:
		m := map[string]interface{}{
			"type": "IfStmt",
			"pos":  n.pos.String(),
			"cond": toJSON(n.Cond),
			"then": mapSlice(n.Then, stmtJSON),
		}
		if n.Else != nil {
			m["else"] = mapSlice(n.Else, stmtJSON)
		}
		return m

	case *ForStmt:
		m := map[string]interface{}{
			"type": "ForStmt",
			"pos":  n.pos.String(),
			"body": mapSlice(n.Body, stmtJSON),
		}
		if n.Init != nil {
			m["init"] = toJSON(n.Init)
		}
		if n.Cond != nil {
			m["cond"] = toJSON(n.Cond)
		}
		if n.Post != nil {
			m["post"] = toJSON(n.Post)
		}
		return m

	case *ReturnStmt:
		m := map[string]interface{}{
			"type": "ReturnStmt",
			"pos":  n.pos.String(),
		}
		if n.Result != nil {
			m["result"] = toJSON(n.Result)
		}
		return m

	case *Name:
		return map[string]interface{}{
			"type":  "Name",
			"pos":   n.pos.String(),
			"value": n.Value,
		}

	case *NumberLit:
		return map[string]interface{}{
			"type":  "NumberLit",
			"pos":   n.pos.String(),
			"lit":   n.Lit,
			"value": n.Value,
		}

	case *CallExpr:
		return map[string]interface{}{
			"type": "CallExpr",
			"pos":  n.pos.String(),
			"name": n.Name,
			"args": mapSlice(n.Args, exprJSON),
		}

	case *UnaryExpr:
		return map[string]interface{}{
			"type": "UnaryExpr",
			"pos":  n.pos.String(),
			"op":   n.Op.String(),
			"x":    toJSON(n.X),
		}

	case *BinaryExpr:
		return map[string]interface{}{
			"type": "BinaryExpr",
			"pos":  n.pos.String(),
			"op":   n.Op.String(),
			"x":    toJSON(n.X),
			"y":    toJSON(n.Y),
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}

func stmtJSON(s Stmt) interface{} { return toJSON(s) }
func exprJSON(x Expr) interface{} { return toJSON(x) }

func mapSlice[T any](s []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}
