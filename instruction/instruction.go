// Package instruction defines the input data model for the DAG-to-CFG
// lowering core: the closed set of timestepper instruction variants and the
// opaque expression values they carry.
package instruction

// ID uniquely identifies an instruction within a DAG.
type ID string

// Instruction is the closed set of node kinds that can appear in a
// timestepper instruction DAG. Emission dispatches on the concrete type via
// a type switch; the set is not meant to be extended by callers.
type Instruction interface {
	// InstructionID returns this instruction's unique identifier.
	InstructionID() ID

	// DependsOn returns the unconditional predecessor IDs: instructions that
	// must execute before this one on every path.
	DependsOn() []ID

	// Assigns returns the variable names this instruction assigns.
	Assigns() []string

	// Reads returns the variable names this instruction reads.
	Reads() []string
}

// Expr is an opaque expression value carried by an instruction (a right-hand
// side, a branch condition, a yielded value, an error). The core never
// interprets expressions; it only needs to know which variables they read,
// so that the symbol table can register them. The concrete
// expression language is an external collaborator (spec: "the source
// language of timestepper instructions... is out of scope").
type Expr interface {
	// FreeVariables returns the variable names referenced by the expression.
	FreeVariables() []string
}

// Const is a trivial Expr with no free variables, useful for literals and in
// tests.
type Const struct {
	Value any
}

func (Const) FreeVariables() []string { return nil }

// Entry is the synthetic sentinel instruction added by the augmenter to mark
// the start of a function. It has no assignees, no reads, and (before
// augmentation touches it) no dependencies.
type Entry struct {
	ID ID
}

func (e *Entry) InstructionID() ID { return e.ID }
func (e *Entry) DependsOn() []ID   { return nil }
func (e *Entry) Assigns() []string { return nil }
func (e *Entry) Reads() []string   { return nil }

// Exit is the synthetic sentinel instruction added by the augmenter to mark
// the end of a function. Its Deps is [entry_id] ++ roots once augmentation
// runs.
type Exit struct {
	ID   ID
	Deps []ID
}

func (e *Exit) InstructionID() ID { return e.ID }
func (e *Exit) DependsOn() []ID   { return e.Deps }
func (e *Exit) Assigns() []string { return nil }
func (e *Exit) Reads() []string   { return nil }

// AssignExpression is a scalar assignment: lhs = rhs.
type AssignExpression struct {
	ID   ID
	Deps []ID
	LHS  string
	RHS  Expr
}

func (a *AssignExpression) InstructionID() ID { return a.ID }
func (a *AssignExpression) DependsOn() []ID   { return a.Deps }
func (a *AssignExpression) Assigns() []string { return []string{a.LHS} }
func (a *AssignExpression) Reads() []string   { return freeVarsOf(a.RHS) }

// AssignSolvedRHS is an assignment whose right-hand side is an implicit
// solve; it is distinguished from AssignExpression at the instruction level
// so an emitter can choose a different lowering, but this core treats it
// identically to AssignExpression for CFG-building purposes.
type AssignSolvedRHS struct {
	ID   ID
	Deps []ID
	LHS  string
	RHS  Expr
}

func (a *AssignSolvedRHS) InstructionID() ID { return a.ID }
func (a *AssignSolvedRHS) DependsOn() []ID   { return a.Deps }
func (a *AssignSolvedRHS) Assigns() []string { return []string{a.LHS} }
func (a *AssignSolvedRHS) Reads() []string   { return freeVarsOf(a.RHS) }

// If is a conditional instruction. ThenDependsOn and ElseDependsOn list the
// instructions whose emission is gated on the branch taken; they contribute
// conditional edges to the DAG, never unconditional ones.
type If struct {
	ID            ID
	Deps          []ID
	Condition     Expr
	ThenDependsOn []ID
	ElseDependsOn []ID
}

func (i *If) InstructionID() ID { return i.ID }
func (i *If) DependsOn() []ID   { return i.Deps }
func (i *If) Assigns() []string { return nil }
func (i *If) Reads() []string   { return freeVarsOf(i.Condition) }

// YieldState emits a value observable to the driver without terminating the
// function.
type YieldState struct {
	ID          ID
	Deps        []ID
	Time        Expr
	TimeID      string
	ComponentID string
	Expression  Expr
}

func (y *YieldState) InstructionID() ID { return y.ID }
func (y *YieldState) DependsOn() []ID   { return y.Deps }
func (y *YieldState) Assigns() []string { return nil }
func (y *YieldState) Reads() []string {
	vars := freeVarsOf(y.Time)
	vars = append(vars, freeVarsOf(y.Expression)...)
	return vars
}

// Raise terminates execution with an error.
type Raise struct {
	ID    ID
	Deps  []ID
	Error Expr
}

func (r *Raise) InstructionID() ID { return r.ID }
func (r *Raise) DependsOn() []ID   { return r.Deps }
func (r *Raise) Assigns() []string { return nil }
func (r *Raise) Reads() []string   { return freeVarsOf(r.Error) }

// FailStep terminates the current integration step, signaling failure to
// retry; it carries no payload.
type FailStep struct {
	ID   ID
	Deps []ID
}

func (f *FailStep) InstructionID() ID { return f.ID }
func (f *FailStep) DependsOn() []ID   { return f.Deps }
func (f *FailStep) Assigns() []string { return nil }
func (f *FailStep) Reads() []string   { return nil }

func freeVarsOf(e Expr) []string {
	if e == nil {
		return nil
	}
	return e.FreeVariables()
}
