package cfg

import (
	"fmt"
	"strings"

	"dagcfg/instruction"
)

// Printer renders a Function as a readable block listing, adapted from the
// teacher's internal/ir pretty-printer: a thin indent-tracking string
// builder driven by type switches over the statement/terminator variants,
// generalized from SSA values down to this package's flag-guarded blocks.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print returns fn rendered as text.
func Print(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *Function) {
	p.writeLine("FUNCTION %s {", fn.Name)
	p.indent++
	if fn.Entry != nil {
		p.writeLine("entry: %s", blockLabel(fn.Entry))
	}
	for _, b := range fn.Blocks {
		p.printBasicBlock(b)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBasicBlock(b *BasicBlock) {
	p.writeLine("%s:", blockLabel(b))
	p.indent++
	for _, stmt := range b.Statements {
		p.printStatement(stmt)
	}
	if b.Terminator != nil {
		p.printTerminator(b.Terminator)
	} else {
		p.writeLine("; <no terminator>")
	}
	p.indent--
}

func (p *Printer) printStatement(stmt Statement) {
	switch s := stmt.(type) {
	case Assignment:
		p.writeLine("%s = %s", s.LHS, exprString(s.RHS))
	case YieldStateStmt:
		p.writeLine("yield_state(t=%s @ %s, component=%s, value=%s)",
			exprString(s.Time), s.TimeID, s.ComponentID, exprString(s.Expression))
	default:
		p.writeLine("UNKNOWN_STATEMENT<%T>", s)
	}
}

func (p *Printer) printTerminator(term Terminator) {
	switch t := term.(type) {
	case Return:
		p.writeLine("return")
	case Jump:
		p.writeLine("jump %s", blockLabel(t.Target))
	case Branch:
		p.writeLine("branch %s ? %s : %s", exprString(t.Condition), blockLabel(t.Then), blockLabel(t.Else))
	case RaiseTerm:
		p.writeLine("raise %s", exprString(t.Error))
	case FailStepTerm:
		p.writeLine("fail_step")
	default:
		p.writeLine("UNKNOWN_TERMINATOR<%T>", t)
	}
}

func blockLabel(b *BasicBlock) string {
	if b == nil {
		return "<nil>"
	}
	return fmt.Sprintf("bb%d", b.Number)
}

func exprString(e instruction.Expr) string {
	if e == nil {
		return "<nil>"
	}
	vars := e.FreeVariables()
	if len(vars) == 0 {
		return fmt.Sprintf("%T", e)
	}
	return fmt.Sprintf("%T(%s)", e, strings.Join(vars, ", "))
}

func (fn *Function) String() string  { return Print(fn) }
func (b *BasicBlock) String() string { return blockLabel(b) }
