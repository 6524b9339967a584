package ast

import "encoding/json"

// Print renders a Module as deterministic, indented JSON for golden tests
// and the `erm ast` debug subcommand.
func Print(m *Module) (string, error) {
	data, err := json.MarshalIndent(moduleToMap(m), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func moduleToMap(m *Module) map[string]interface{} {
	stmts := make([]interface{}, len(m.Statements))
	for i, s := range m.Statements {
		stmts[i] = stmtToMap(s)
	}
	imports := make([]interface{}, len(m.Imports))
	for i, imp := range m.Imports {
		imports[i] = map[string]interface{}{
			"module": imp.Module,
			"alias":  imp.Alias,
		}
	}
	return map[string]interface{}{
		"type":       "Module",
		"name":       m.Name,
		"imports":    imports,
		"statements": stmts,
	}
}

func stmtToMap(s Stmt) interface{} {
	switch v := s.(type) {
	case *Binding:
		return map[string]interface{}{"type": "Binding", "name": v.Name, "expr": exprToMap(v.Expr)}
	case *Function:
		args := make([]interface{}, len(v.Args))
		for i, a := range v.Args {
			args[i] = patternToMap(a)
		}
		return map[string]interface{}{"type": "Function", "name": v.Name, "args": args, "expr": exprToMap(v.Expr)}
	case *Infix:
		return map[string]interface{}{
			"type": "Infix", "operator": v.Operator, "associativity": v.Associativity.String(),
			"precedence": v.Precedence, "function": v.FunctionName,
		}
	case *TypeSignature:
		return map[string]interface{}{"type": "TypeSignature", "name": v.Name, "sig": v.Type.String()}
	case *TypeDecl:
		return map[string]interface{}{"type": "Type", "name": v.Name, "vars": v.TypeVariables, "def": v.String()}
	default:
		return map[string]interface{}{"type": "Unknown"}
	}
}

func patternToMap(p Pattern) interface{} {
	switch v := p.(type) {
	case *NamePattern:
		return map[string]interface{}{"type": "Name", "name": v.Name}
	case *WildcardPattern:
		return map[string]interface{}{"type": "Anything"}
	case *BoolPattern:
		return map[string]interface{}{"type": "Bool", "value": v.Value}
	case *IntPattern:
		return map[string]interface{}{"type": "Integer", "value": v.Value}
	default:
		return map[string]interface{}{"type": "Unknown"}
	}
}

func exprToMap(e Expr) interface{} {
	switch v := e.(type) {
	case *BoolLit:
		return map[string]interface{}{"type": "Bool", "value": v.Value}
	case *IntLit:
		return map[string]interface{}{"type": "Integer", "value": v.Value}
	case *FloatLit:
		return map[string]interface{}{"type": "Float", "value": v.Value}
	case *StringLit:
		return map[string]interface{}{"type": "String", "value": v.Value}
	case *ListLit:
		elems := make([]interface{}, len(v.Elements))
		for i, el := range v.Elements {
			elems[i] = exprToMap(el)
		}
		return map[string]interface{}{"type": "List", "elements": elems}
	case *If:
		return map[string]interface{}{
			"type": "If", "cond": exprToMap(v.Cond), "then": exprToMap(v.Then), "else": exprToMap(v.Else),
		}
	case *Case:
		branches := make([]interface{}, len(v.Branches))
		for i, b := range v.Branches {
			branches[i] = map[string]interface{}{"pattern": patternToMap(b.Pattern), "expr": exprToMap(b.Expr)}
		}
		return map[string]interface{}{"type": "Case", "scrutinee": exprToMap(v.Scrutinee), "branches": branches}
	case *Call:
		args := make([]interface{}, len(v.Args))
		for i, a := range v.Args {
			args[i] = exprToMap(a)
		}
		return map[string]interface{}{"type": "Call", "function": exprToMap(v.Function), "args": args}
	case *BinOp:
		return map[string]interface{}{"type": "BinOp", "op": v.Op, "left": exprToMap(v.Left), "right": exprToMap(v.Right)}
	case *VarName:
		return map[string]interface{}{"type": "VarName", "name": v.Name.String()}
	case *Let:
		bindings := make([]interface{}, len(v.Bindings))
		for i, b := range v.Bindings {
			bindings[i] = b.Name
		}
		return map[string]interface{}{"type": "Let", "bindings": bindings, "body": exprToMap(v.Body)}
	case *Lambda:
		args := make([]interface{}, len(v.Args))
		for i, a := range v.Args {
			args[i] = patternToMap(a)
		}
		return map[string]interface{}{"type": "Lambda", "args": args, "body": exprToMap(v.Body)}
	default:
		return map[string]interface{}{"type": "Unknown"}
	}
}
