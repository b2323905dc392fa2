package cfg

import (
	"sort"
	"strconv"

	"dagcfg/dagview"
	"dagcfg/diagnostic"
	"dagcfg/flagtracker"
	"dagcfg/instruction"
	"dagcfg/partition"
	"dagcfg/reduce"
)

// IsStateVariable is the external predicate (spec §6) distinguishing
// function-local temporaries from globally observable state. The caller
// supplies it; this core never hard-codes which names are global.
type IsStateVariable func(name string) bool

// Assemble drives the full pipeline — augment, reduce, partition, emit — and
// returns a well-formed Function, or an error if the input DAG is malformed
// or an internal invariant is violated during emission.
//
// This is cfg.Assemble, the Go counterpart of dag2ir.py's
// ControlFlowGraphAssembler.__call__.
func Assemble(name string, instructions []instruction.Instruction, dependsOn []instruction.ID, isState IsStateVariable) (fn *Function, err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*diagnostic.Fault); ok {
				fn, err = nil, f
				return
			}
			panic(r)
		}
	}()

	augmented, _, exitID := dagview.Augment(instructions, dependsOn)

	view, viewErr := dagview.New(augmented)
	if viewErr != nil {
		return nil, viewErr
	}

	reduced := reduce.Reduce(view)
	blockGraph, instToBlock := partition.Partition(view, reduced)

	a := &assembler{
		view:        view,
		instToBlock: instToBlock,
		blockGraph:  blockGraph,
		fn:          NewFunction(name),
	}
	a.initSymbolTable(augmented, isState)
	a.initFlags(blockGraph)

	exitNum, _ := view.GetNumberForID(exitID)
	exitBlock := instToBlock[exitNum]

	entryBB := a.newEntryBlock()

	universe := make([]flagtracker.Flag, 0, len(a.flags))
	for _, f := range a.flags {
		universe = append(universe, f)
	}
	tracker := flagtracker.NewAllFalse(universe)

	endBB, _ := a.processBlock(exitBlock, entryBB, tracker)
	if !endBB.Terminated() {
		endBB.AddReturn()
	}

	a.fn.Entry = entryBB

	for _, b := range a.fn.Blocks {
		if !b.Terminated() {
			diagnostic.Abort(diagnostic.New(diagnostic.CodeUnterminatedBlock,
				"basic block left without a terminator after assembly",
				blockLabel(b)))
		}
	}

	return a.fn, nil
}

// assembler holds the mutable state threaded through one Assemble call. It
// exclusively owns the Function under construction for the duration of the
// call (spec §5: "C7... mutates an IR builder it exclusively owns for the
// duration of one assembly call").
type assembler struct {
	view        *dagview.View
	instToBlock map[int]*partition.Block
	blockGraph  map[*partition.Block][]*partition.Block

	fn    *Function
	flags map[*partition.Block]flagtracker.Flag
}

// initSymbolTable registers every assigned/read variable from the augmented
// instruction set, marking globals per the external is_state_variable
// predicate (spec §4.7 Setup).
func (a *assembler) initSymbolTable(augmented []instruction.Instruction, isState IsStateVariable) {
	names := make(map[string]struct{})
	for _, inst := range augmented {
		for _, v := range inst.Assigns() {
			names[v] = struct{}{}
		}
		for _, v := range inst.Reads() {
			names[v] = struct{}{}
		}
	}
	for v := range names {
		a.fn.Symbols.AddVariable(v, isState(v), false)
	}
}

// processBlockSequence folds processBlock over a sequence of dependency
// blocks, threading the basic block cursor and flag tracker through each
// (spec §4.7, dag2ir.py's _process_block_sequence).
func (a *assembler) processBlockSequence(blocks []*partition.Block, topBB *BasicBlock, tracker flagtracker.Tracker) (*BasicBlock, flagtracker.Tracker) {
	mainBB := topBB
	for _, b := range blocks {
		mainBB, tracker = a.processBlock(b, mainBB, tracker)
	}
	return mainBB, tracker
}

// processBlock ensures inst block b has executed by the time control
// reaches the returned basic block, updating the tracker accordingly. This
// is cfg.Assemble's direct port of dag2ir.py's _process_block (spec §4.7).
func (a *assembler) processBlock(b *partition.Block, topBB *BasicBlock, tracker flagtracker.Tracker) (*BasicBlock, flagtracker.Tracker) {
	flag := a.flags[b]

	if tracker.IsDefinitelyTrue(flag) {
		return topBB, tracker
	}

	needsFlag := !tracker.IsDefinitelyFalse(flag)

	mainBB, tracker := a.processBlockSequence(a.blockGraph[b], topBB, tracker)

	var mergeBB *BasicBlock
	if needsFlag {
		newMainBB := a.fn.NewBlock()
		mergeBB = a.fn.NewBlock()
		mainBB.AddBranch(notExpr{flag}, newMainBB, mergeBB)
		mainBB = newMainBB
	}

emit:
	for _, n := range *b {
		inst := a.view.InstructionAt(n)

		switch node := inst.(type) {
		case *instruction.Entry:
			continue

		case *instruction.Exit:
			mainBB.AddReturn()
			break emit

		case *instruction.If:
			thenBlocks := a.blocksOf(node.ThenDependsOn)
			elseBlocks := a.blocksOf(node.ElseDependsOn)

			thenBB := a.fn.NewBlock()
			elseBB := a.fn.NewBlock()
			joinBB := a.fn.NewBlock()

			endThenBB, thenTracker := a.processBlockSequence(thenBlocks, thenBB, tracker)
			endElseBB, elseTracker := a.processBlockSequence(elseBlocks, elseBB, tracker)

			mainBB.AddBranch(node.Condition, thenBB, elseBB)

			if !endThenBB.Terminated() {
				endThenBB.AddJump(joinBB)
			}
			if !endElseBB.Terminated() {
				endElseBB.AddJump(joinBB)
			}

			tracker = thenTracker.Meet(elseTracker)
			mainBB = joinBB

		case *instruction.YieldState:
			mainBB.AddYieldState(node.Time, node.TimeID, node.ComponentID, node.Expression)

		case *instruction.AssignExpression:
			mainBB.AddAssignment(node.LHS, node.RHS)

		case *instruction.AssignSolvedRHS:
			mainBB.AddAssignment(node.LHS, node.RHS)

		case *instruction.Raise:
			mainBB.AddRaise(node.Error)
			break emit

		case *instruction.FailStep:
			mainBB.AddFailStep()
			break emit

		default:
			diagnostic.Abort(diagnostic.New(diagnostic.CodeUnrecognizedVariant,
				"unrecognized instruction variant during emission",
				string(inst.InstructionID())))
		}
	}

	if !mainBB.Terminated() {
		mainBB.AddAssignment(string(flag), trueExpr{})
		if needsFlag {
			mainBB.AddJump(mergeBB)
			mainBB = mergeBB
		}
	}

	tracker = tracker.SetTrue(flag)
	return mainBB, tracker
}

func (a *assembler) blocksOf(ids []instruction.ID) []*partition.Block {
	out := make([]*partition.Block, 0, len(ids))
	for _, id := range ids {
		n, ok := a.view.GetNumberForID(id)
		if !ok {
			diagnostic.Abort(diagnostic.New(diagnostic.CodeDanglingReference,
				"If branch references an unknown instruction ID", string(id)))
		}
		out = append(out, a.instToBlock[n])
	}
	return out
}

// newEntryBlock creates the function's entry block and zero-initializes
// every flag.
func (a *assembler) newEntryBlock() *BasicBlock {
	start := a.fn.NewBlock()
	for _, flag := range sortedFlags(a.flags) {
		start.AddAssignment(string(flag), falseExpr{})
	}
	return start
}

// initFlags allocates one fresh flag per block and registers it in the
// symbol table (spec §4.7 Setup, dag2ir.py's _initialize_flags).
func (a *assembler) initFlags(blockGraph map[*partition.Block][]*partition.Block) {
	a.flags = make(map[*partition.Block]flagtracker.Flag, len(blockGraph))
	for i, b := range partition.SortedBlocks(blockGraph) {
		name := a.fn.Symbols.FreshVariableName("flag_" + strconv.Itoa(i))
		a.flags[b] = flagtracker.Flag(name)
		a.fn.Symbols.AddVariable(name, false, true)
	}
}

func sortedFlags(flags map[*partition.Block]flagtracker.Flag) []flagtracker.Flag {
	out := make([]flagtracker.Flag, 0, len(flags))
	for _, f := range flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// notExpr, trueExpr, falseExpr are the minimal Expr values this core needs
// to emit for its own generated conditions and flag assignments — logical
// negation of a flag, and the boolean literals true/false — without
// depending on whatever expression language the caller's instructions use.
type notExpr struct{ flag flagtracker.Flag }

func (n notExpr) FreeVariables() []string { return []string{string(n.flag)} }

type trueExpr struct{}

func (trueExpr) FreeVariables() []string { return nil }

type falseExpr struct{}

func (falseExpr) FreeVariables() []string { return nil }
