package ast

// Builders used by tests and by compiler-synthesized code. Tokens built here
// carry line 0 unless a line is given explicitly.

var operatorTypes = map[string]TokenType{
	"-":   TokenMinus,
	"+":   TokenPlus,
	"/":   TokenSlash,
	"*":   TokenStar,
	"!":   TokenBang,
	"!=":  TokenBangEqual,
	"=":   TokenEqual,
	"==":  TokenEqualEqual,
	">":   TokenGreater,
	">=":  TokenGreaterEqual,
	"<":   TokenLess,
	"<=":  TokenLessEqual,
	"and": TokenAnd,
	"or":  TokenOr,
}

// Op returns the token for an operator lexeme.
func Op(lexeme string) Token {
	kind, ok := operatorTypes[lexeme]
	if !ok {
		panic("ast: unknown operator " + lexeme)
	}
	return NewToken(kind, lexeme, 0)
}

// Name returns an identifier token.
func Name(name string) Token {
	return NewToken(TokenIdentifier, name, 0)
}

// Identifier and literal helpers.

func ID(name string) *Variable {
	return NewVariable(Name(name))
}

func Num(value float64) *Literal {
	return NewLiteral(value)
}

func Str(value string) *Literal {
	return NewLiteral(value)
}

func Bool(value bool) *Literal {
	return NewLiteral(value)
}

func Nil() *Literal {
	return NewLiteral(nil)
}

// Expression helpers.

func Bin(op string, left, right Expression) *Binary {
	return NewBinary(left, Op(op), right)
}

func Un(op string, right Expression) *Unary {
	return NewUnary(Op(op), right)
}

func AndExpr(left, right Expression) *Logical {
	return NewLogical(left, Op("and"), right)
}

func OrExpr(left, right Expression) *Logical {
	return NewLogical(left, Op("or"), right)
}

func Group(expr Expression) *Grouping {
	return NewGrouping(expr)
}

func Asg(name string, value Expression) *Assign {
	return NewAssign(Name(name), value)
}

func CallOf(callee Expression, args ...Expression) *Call {
	return NewCall(callee, NewToken(TokenRightParen, ")", 0), args)
}

func Prop(object Expression, name string) *Get {
	return NewGet(object, Name(name))
}

func SetProp(object Expression, name string, value Expression) *Set {
	return NewSet(object, Name(name), value)
}

func Self() *This {
	return NewThis(NewToken(TokenThis, "this", 0))
}

func SuperOf(method string) *Super {
	return NewSuper(NewToken(TokenSuper, "super", 0), Name(method))
}

// Statement helpers.

func Expr(expr Expression) *ExpressionStmt {
	return NewExpressionStmt(expr)
}

func Out(expr Expression) *Print {
	return NewPrint(expr)
}

func Let(name string, initializer Expression) *VarDecl {
	return NewVarDecl(Name(name), initializer)
}

func Blk(statements ...Statement) *Block {
	return NewBlock(statements)
}

func Cond(condition Expression, thenBranch, elseBranch Statement) *If {
	return NewIf(condition, thenBranch, elseBranch)
}

func Loop(condition Expression, body Statement) *While {
	return NewWhile(condition, body)
}

func Ret(value Expression) *Return {
	return NewReturn(NewToken(TokenReturn, "return", 0), value)
}

func Fn(name string, params []string, body ...Statement) *FunctionDecl {
	tokens := make([]Token, len(params))
	for idx, param := range params {
		tokens[idx] = Name(param)
	}
	return NewFunctionDecl(Name(name), tokens, body)
}

// ClassOf builds a class declaration; an empty superclass means none.
func ClassOf(name, superclass string, methods ...*FunctionDecl) *ClassDecl {
	var super *Variable
	if superclass != "" {
		super = ID(superclass)
	}
	return NewClassDecl(Name(name), super, methods)
}
