package ast

type NodeType string

const (
	NodeAssign         NodeType = "Assign"
	NodeBinary         NodeType = "Binary"
	NodeCall           NodeType = "Call"
	NodeGet            NodeType = "Get"
	NodeGrouping       NodeType = "Grouping"
	NodeLiteral        NodeType = "Literal"
	NodeLogical        NodeType = "Logical"
	NodeSet            NodeType = "Set"
	NodeSuper          NodeType = "Super"
	NodeThis           NodeType = "This"
	NodeUnary          NodeType = "Unary"
	NodeVariable       NodeType = "Variable"
	NodeBlock          NodeType = "Block"
	NodeClassDecl      NodeType = "ClassDecl"
	NodeExpressionStmt NodeType = "ExpressionStmt"
	NodeFunctionDecl   NodeType = "FunctionDecl"
	NodeIf             NodeType = "If"
	NodePrint          NodeType = "Print"
	NodeReturn         NodeType = "Return"
	NodeVarDecl        NodeType = "VarDecl"
	NodeWhile          NodeType = "While"
)

// Node is implemented by every expression and statement. Nodes are always
// handled through pointers, so the pointer is the node's identity: two
// structurally equal references at different source points are distinct keys.
type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

// Assign writes Value to Name. A Reset assignment has no Value and returns
// the binding to the uninitialized state; only the compiler produces one.
type Assign struct {
	nodeImpl
	expressionMarker

	Name  Token
	Value Expression
	Reset bool
}

func NewAssign(name Token, value Expression) *Assign {
	return &Assign{nodeImpl: newNodeImpl(NodeAssign), Name: name, Value: value}
}

func NewReset(name Token) *Assign {
	assign := NewAssign(name, nil)
	assign.Reset = true
	return assign
}

type Binary struct {
	nodeImpl
	expressionMarker

	Left     Expression
	Operator Token
	Right    Expression
}

func NewBinary(left Expression, operator Token, right Expression) *Binary {
	return &Binary{nodeImpl: newNodeImpl(NodeBinary), Left: left, Operator: operator, Right: right}
}

// Call keeps the closing paren token so arity errors can be attributed.
type Call struct {
	nodeImpl
	expressionMarker

	Callee    Expression
	Paren     Token
	Arguments []Expression
}

func NewCall(callee Expression, paren Token, arguments []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall), Callee: callee, Paren: paren, Arguments: arguments}
}

type Get struct {
	nodeImpl
	expressionMarker

	Object Expression
	Name   Token
}

func NewGet(object Expression, name Token) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet), Object: object, Name: name}
}

type Grouping struct {
	nodeImpl
	expressionMarker

	Expression Expression
}

func NewGrouping(expression Expression) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping), Expression: expression}
}

// Literal holds nil, bool, float64 or string.
type Literal struct {
	nodeImpl
	expressionMarker

	Value any
}

func NewLiteral(value any) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Value: value}
}

type Logical struct {
	nodeImpl
	expressionMarker

	Left     Expression
	Operator Token
	Right    Expression
}

func NewLogical(left Expression, operator Token, right Expression) *Logical {
	return &Logical{nodeImpl: newNodeImpl(NodeLogical), Left: left, Operator: operator, Right: right}
}

type Set struct {
	nodeImpl
	expressionMarker

	Object Expression
	Name   Token
	Value  Expression
}

func NewSet(object Expression, name Token, value Expression) *Set {
	return &Set{nodeImpl: newNodeImpl(NodeSet), Object: object, Name: name, Value: value}
}

type Super struct {
	nodeImpl
	expressionMarker

	Keyword Token
	Method  Token
}

func NewSuper(keyword Token, method Token) *Super {
	return &Super{nodeImpl: newNodeImpl(NodeSuper), Keyword: keyword, Method: method}
}

type This struct {
	nodeImpl
	expressionMarker

	Keyword Token
}

func NewThis(keyword Token) *This {
	return &This{nodeImpl: newNodeImpl(NodeThis), Keyword: keyword}
}

type Unary struct {
	nodeImpl
	expressionMarker

	Operator Token
	Right    Expression
}

func NewUnary(operator Token, right Expression) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary), Operator: operator, Right: right}
}

type Variable struct {
	nodeImpl
	expressionMarker

	Name Token
}

func NewVariable(name Token) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type Block struct {
	nodeImpl
	statementMarker

	Statements []Statement
}

func NewBlock(statements []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Statements: statements}
}

type ClassDecl struct {
	nodeImpl
	statementMarker

	Name       Token
	Superclass *Variable
	Methods    []*FunctionDecl
}

func NewClassDecl(name Token, superclass *Variable, methods []*FunctionDecl) *ClassDecl {
	return &ClassDecl{nodeImpl: newNodeImpl(NodeClassDecl), Name: name, Superclass: superclass, Methods: methods}
}

type ExpressionStmt struct {
	nodeImpl
	statementMarker

	Expression Expression
}

func NewExpressionStmt(expression Expression) *ExpressionStmt {
	return &ExpressionStmt{nodeImpl: newNodeImpl(NodeExpressionStmt), Expression: expression}
}

// FunctionDecl is both a named function and a class method. TailRec records
// that the declaration opted into the loop rewrite; the body stored here is
// already the rewritten one when that succeeded.
type FunctionDecl struct {
	nodeImpl
	statementMarker

	Name    Token
	Params  []Token
	Body    []Statement
	TailRec bool
}

func NewFunctionDecl(name Token, params []Token, body []Statement) *FunctionDecl {
	return &FunctionDecl{nodeImpl: newNodeImpl(NodeFunctionDecl), Name: name, Params: params, Body: body}
}

type If struct {
	nodeImpl
	statementMarker

	Condition  Expression
	ThenBranch Statement
	ElseBranch Statement
}

func NewIf(condition Expression, thenBranch Statement, elseBranch Statement) *If {
	return &If{nodeImpl: newNodeImpl(NodeIf), Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

type Print struct {
	nodeImpl
	statementMarker

	Expression Expression
}

func NewPrint(expression Expression) *Print {
	return &Print{nodeImpl: newNodeImpl(NodePrint), Expression: expression}
}

type Return struct {
	nodeImpl
	statementMarker

	Keyword Token
	Value   Expression
}

func NewReturn(keyword Token, value Expression) *Return {
	return &Return{nodeImpl: newNodeImpl(NodeReturn), Keyword: keyword, Value: value}
}

// VarDecl declares a variable. Synthetic declarations are produced by the
// compiler (never by source text) and are exempt from the duplicate check.
type VarDecl struct {
	nodeImpl
	statementMarker

	Name        Token
	Initializer Expression
	Synthetic   bool
}

func NewVarDecl(name Token, initializer Expression) *VarDecl {
	return &VarDecl{nodeImpl: newNodeImpl(NodeVarDecl), Name: name, Initializer: initializer}
}

type While struct {
	nodeImpl
	statementMarker

	Condition Expression
	Body      Statement
}

func NewWhile(condition Expression, body Statement) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile), Condition: condition, Body: body}
}

// StatementsOf flattens a block into its members; any other statement is
// returned as a single-element list.
func StatementsOf(stmt Statement) []Statement {
	if stmt == nil {
		return nil
	}
	if block, ok := stmt.(*Block); ok {
		return block.Statements
	}
	return []Statement{stmt}
}
