package croc

import "testing"

func TestDupPushesCopy(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 9)
	if err := th.Dup(-1); err != nil {
		t.Fatalf("Dup: %v", err)
	}
	if th.StackSize() != 2 {
		t.Fatalf("StackSize = %d, want 2", th.StackSize())
	}
	if th.GetInt(-1) != 9 || th.GetInt(-2) != 9 {
		t.Fatalf("both slots should hold 9")
	}
}

func TestSwapExchangesValues(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 1)
	mustPushInt(t, th, 2)
	if err := th.Swap(-2, -1); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if th.GetInt(-2) != 2 || th.GetInt(-1) != 1 {
		t.Fatalf("Swap did not exchange values")
	}
}

func TestInsertShiftsValuesUp(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 1)
	mustPushInt(t, th, 2)
	mustPushInt(t, th, 3)
	if err := th.Insert(0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if th.GetInt(0) != 3 || th.GetInt(1) != 1 || th.GetInt(2) != 2 {
		t.Fatalf("stack after Insert(0) is wrong: [%d %d %d]", th.GetInt(0), th.GetInt(1), th.GetInt(2))
	}
}

func TestCmpOrdersInts(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 1)
	mustPushInt(t, th, 2)
	c, err := th.Cmp(-2, -1)
	if err != nil || c >= 0 {
		t.Fatalf("Cmp(1,2) = %v, %v; want negative, nil", c, err)
	}
}

func TestLenOfString(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.PushString("abcd"); err != nil {
		t.Fatalf("PushString: %v", err)
	}
	if err := th.Len(-1); err != nil {
		t.Fatalf("Len: %v", err)
	}
	if th.GetInt(-1) != 4 {
		t.Fatalf("len(\"abcd\") = %d, want 4", th.GetInt(-1))
	}
}

func TestFieldOnNamespace(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.NewNamespace("ns"); err != nil {
		t.Fatalf("NewNamespace: %v", err)
	}
	mustPushInt(t, th, 5)
	if err := th.Fielda(-2, "x", -1); err != nil {
		t.Fatalf("Fielda: %v", err)
	}
	if err := th.Field(-2, "x"); err != nil {
		t.Fatalf("Field: %v", err)
	}
	if th.GetInt(-1) != 5 {
		t.Fatalf("ns.x = %d, want 5", th.GetInt(-1))
	}
}

func TestThrowExceptionSetsPendingAndTraceback(t *testing.T) {
	_, th := newTestEngine(t)
	if err := th.PushString("boom"); err != nil {
		t.Fatalf("PushString: %v", err)
	}
	if err := th.ThrowException(-1); err != nil {
		t.Fatalf("ThrowException: %v", err)
	}
	// An empty traceback is fine when the thread has no active frames
	// (ThrowException called outside any script call); this must not panic.
	_ = th.GetTraceback()
}

func TestCallNonFunctionErrors(t *testing.T) {
	_, th := newTestEngine(t)
	mustPushInt(t, th, 1)
	if err := th.Call(-1, 0, -1); err == nil {
		t.Fatalf("calling a non-function value should error")
	}
}

func TestHaltDoesNotPanicWithNoActiveFrame(t *testing.T) {
	_, th := newTestEngine(t)
	th.Halt()
}
