package cfg

import "testing"

func TestBasicBlockAddReturnTerminates(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	if b.Terminated() {
		t.Fatal("a fresh block must not be terminated")
	}
	b.AddReturn()
	if !b.Terminated() {
		t.Error("AddReturn should terminate the block")
	}
}

func TestBasicBlockPanicsWhenAppendingAfterTerminator(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	b.AddReturn()

	defer func() {
		if recover() == nil {
			t.Error("appending to a terminated block should panic")
		}
	}()
	b.AddAssignment("x", nil)
}

func TestBasicBlockFunctionBackReference(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	if b.Function() != fn {
		t.Error("BasicBlock.Function() must return its owning Function")
	}
}

func TestFunctionNewBlockNumbersSequentially(t *testing.T) {
	fn := NewFunction("f")
	b0 := fn.NewBlock()
	b1 := fn.NewBlock()
	if b0.Number != 0 || b1.Number != 1 {
		t.Errorf("block numbers = %d, %d; expected 0, 1", b0.Number, b1.Number)
	}
}

func TestFunctionAllTerminatedRequiresEveryBlock(t *testing.T) {
	fn := NewFunction("f")
	b0 := fn.NewBlock()
	b1 := fn.NewBlock()
	b0.AddReturn()

	if fn.AllTerminated() {
		t.Error("AllTerminated should be false while b1 has no terminator")
	}
	b1.AddReturn()
	if !fn.AllTerminated() {
		t.Error("AllTerminated should be true once every block is terminated")
	}
}

func TestSymbolTableAddVariableMergesMetadata(t *testing.T) {
	st := NewSymbolTable()
	st.AddVariable("x", false, false)
	st.AddVariable("x", true, false)

	sym, ok := st.Lookup("x")
	if !ok {
		t.Fatal("expected 'x' to be registered")
	}
	if !sym.IsGlobal {
		t.Error("re-adding 'x' as global should upgrade its metadata, not reset it")
	}
}

func TestSymbolTableFreshVariableName(t *testing.T) {
	st := NewSymbolTable()
	st.AddVariable("flag_0", false, true)

	name := st.FreshVariableName("flag_0")
	if name != "flag_0_1" {
		t.Errorf("FreshVariableName(\"flag_0\") = %q, expected flag_0_1", name)
	}

	name2 := st.FreshVariableName("flag_1")
	if name2 != "flag_1" {
		t.Errorf("FreshVariableName(\"flag_1\") = %q, expected flag_1 (not yet taken)", name2)
	}
}

func TestSymbolTableLookupMissingReturnsFalse(t *testing.T) {
	st := NewSymbolTable()
	if _, ok := st.Lookup("nope"); ok {
		t.Error("Lookup of an unregistered name should return ok=false")
	}
}
