package ast

// CloneStatement deep-copies a statement. Every node in the copy is freshly
// allocated, so resolutions recorded against the original never apply to it.
func CloneStatement(stmt Statement) Statement {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *Block:
		return NewBlock(CloneStatements(s.Statements))
	case *ClassDecl:
		var superclass *Variable
		if s.Superclass != nil {
			superclass = NewVariable(s.Superclass.Name)
		}
		methods := make([]*FunctionDecl, len(s.Methods))
		for idx, method := range s.Methods {
			methods[idx] = cloneFunction(method)
		}
		return NewClassDecl(s.Name, superclass, methods)
	case *ExpressionStmt:
		return NewExpressionStmt(CloneExpression(s.Expression))
	case *FunctionDecl:
		return cloneFunction(s)
	case *If:
		return NewIf(CloneExpression(s.Condition), CloneStatement(s.ThenBranch), CloneStatement(s.ElseBranch))
	case *Print:
		return NewPrint(CloneExpression(s.Expression))
	case *Return:
		return NewReturn(s.Keyword, CloneExpression(s.Value))
	case *VarDecl:
		decl := NewVarDecl(s.Name, CloneExpression(s.Initializer))
		decl.Synthetic = s.Synthetic
		return decl
	case *While:
		return NewWhile(CloneExpression(s.Condition), CloneStatement(s.Body))
	default:
		panic("ast: unknown statement " + string(stmt.NodeType()))
	}
}

// CloneStatements deep-copies a statement list.
func CloneStatements(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for idx, stmt := range stmts {
		out[idx] = CloneStatement(stmt)
	}
	return out
}

func cloneFunction(fn *FunctionDecl) *FunctionDecl {
	params := append([]Token(nil), fn.Params...)
	out := NewFunctionDecl(fn.Name, params, CloneStatements(fn.Body))
	out.TailRec = fn.TailRec
	return out
}

// CloneExpression deep-copies an expression tree.
func CloneExpression(expr Expression) Expression {
	switch e := expr.(type) {
	case nil:
		return nil
	case *Assign:
		assign := NewAssign(e.Name, CloneExpression(e.Value))
		assign.Reset = e.Reset
		return assign
	case *Binary:
		return NewBinary(CloneExpression(e.Left), e.Operator, CloneExpression(e.Right))
	case *Call:
		args := make([]Expression, len(e.Arguments))
		for idx, arg := range e.Arguments {
			args[idx] = CloneExpression(arg)
		}
		return NewCall(CloneExpression(e.Callee), e.Paren, args)
	case *Get:
		return NewGet(CloneExpression(e.Object), e.Name)
	case *Grouping:
		return NewGrouping(CloneExpression(e.Expression))
	case *Literal:
		return NewLiteral(e.Value)
	case *Logical:
		return NewLogical(CloneExpression(e.Left), e.Operator, CloneExpression(e.Right))
	case *Set:
		return NewSet(CloneExpression(e.Object), e.Name, CloneExpression(e.Value))
	case *Super:
		return NewSuper(e.Keyword, e.Method)
	case *This:
		return NewThis(e.Keyword)
	case *Unary:
		return NewUnary(e.Operator, CloneExpression(e.Right))
	case *Variable:
		return NewVariable(e.Name)
	default:
		panic("ast: unknown expression " + string(expr.NodeType()))
	}
}
