package assembler

import "testing"

func assembleOK(t *testing.T, src string) *AssembledProgram {
	t.Helper()
	prog, errs := Assemble(src)
	if errs != nil {
		t.Fatalf("unexpected assembly errors:\n%s", errs.Error())
	}
	return prog
}

func TestForwardLabelReference(t *testing.T) {
	prog := assembleOK(t, `
		li x1, 3
		li x2, 5
		blt x1, x2, end
		li x3, 7
		end: out x2
		exit
	`)
	// blt is the third instruction, at word index 8; "end:" is defined right
	// after the fourth instruction, at word index 16.
	bltTarget := prog.Text[8+3]
	if bltTarget != 16 {
		t.Fatalf("blt target = %d, want 16", bltTarget)
	}
}

func TestBackwardLabelReference(t *testing.T) {
	prog := assembleOK(t, `
		li x1, 3
		loop: dec x1, 1
		out x1
		li x2, 0
		bgt x1, x2, loop
		exit
	`)
	// loop: is defined right after the first instruction, at word index 4.
	bgtIdx := 4 + 4 + 4 + 4 // loop-relative dec, out, li each 4 words
	if got := prog.Text[bgtIdx+3]; got != 4 {
		t.Fatalf("bgt target = %d, want 4", got)
	}
}

func TestUndefinedLabelIsAnAggregateError(t *testing.T) {
	_, errs := Assemble(`li x1, 1
		beq x1, x1, nowhere
		exit`)
	if errs == nil || !errs.HasErrors() {
		t.Fatalf("expected an undefined-label error")
	}
	found := false
	for _, e := range errs.Errors {
		if e.Kind == ErrUndefinedLabel && e.Lexeme == "nowhere" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrUndefinedLabel for %q, got: %s", "nowhere", errs.Error())
	}
}

func TestFractionalNumberIsAssemblerError(t *testing.T) {
	_, errs := Assemble(`li x1, 3.5
		exit`)
	if errs == nil || !errs.HasErrors() {
		t.Fatalf("expected a fractional-number error")
	}
	if errs.Errors[0].Kind != ErrBadNumber {
		t.Fatalf("kind = %v, want ErrBadNumber", errs.Errors[0].Kind)
	}
}

func TestBadRegisterNumberIsRejected(t *testing.T) {
	_, errs := Assemble(`li x99, 1
		exit`)
	if errs == nil || !errs.HasErrors() || errs.Errors[0].Kind != ErrBadRegister {
		t.Fatalf("expected ErrBadRegister, got %v", errs)
	}
}

func TestStringLiteralInternsIntoDataSegmentWithNullTerminator(t *testing.T) {
	prog := assembleOK(t, `ls x1, "hello"
		out x1
		exit`)
	want := []uint32{'h', 'e', 'l', 'l', 'o', 0}
	if len(prog.Data) != len(want) {
		t.Fatalf("data segment = %v, want %v", prog.Data, want)
	}
	for i, w := range want {
		if prog.Data[i] != w {
			t.Fatalf("data[%d] = %d, want %d", i, prog.Data[i], w)
		}
	}
}

func TestEscapeSequencesAreProcessedAtAssemblyTime(t *testing.T) {
	prog := assembleOK(t, `ls x1, "a\nb\"c"
		exit`)
	var got []byte
	for _, w := range prog.Data {
		if w == 0 {
			break
		}
		got = append(got, byte(w))
	}
	if string(got) != "a\nb\"c" {
		t.Fatalf("unescaped string = %q, want %q", got, "a\nb\"c")
	}
}

func TestRepeatedLabelDefinitionOverwritesSilently(t *testing.T) {
	// spec's Open Question: repeated label definitions silently overwrite
	// the mapping rather than erroring.
	prog, errs := Assemble(`again: li x1, 1
		again: li x2, 2
		beq x1, x1, again
		exit`)
	if errs != nil {
		t.Fatalf("unexpected errors: %s", errs.Error())
	}
	// "again" is redefined at word index 4 (after the first li); the branch
	// must target that second definition.
	beqIdx := 4 + 4
	if got := prog.Text[beqIdx+3]; got != 4 {
		t.Fatalf("beq target = %d, want 4 (second definition)", got)
	}
}

func TestContextOpsRoundTripThroughTextSegment(t *testing.T) {
	prog := assembleOK(t, `ctxrole "system"
		ctxpush x1
		ctxsnap x2
		ctxclr
		ctxrestore x2
		ctxpop x3
		ctxdrop
		exit`)
	if len(prog.Text)%4 != 0 {
		t.Fatalf("text segment length %d is not a multiple of 4 words", len(prog.Text))
	}
	wantInstructions := 8
	if got := len(prog.Text) / 4; got != wantInstructions {
		t.Fatalf("instruction count = %d, want %d", got, wantInstructions)
	}
}

func TestInstructionAlignment(t *testing.T) {
	prog := assembleOK(t, `li x1, 1
		li x2, 2
		mrf x3, x1, x2
		exit`)
	if len(prog.Text)%4 != 0 {
		t.Fatalf("text segment word count %d not a multiple of 4", len(prog.Text))
	}
}

func TestSyntaxErrorStopsAtFirstBadStatementButStillReportsLabels(t *testing.T) {
	// "out ," is malformed (register expected, comma found); panic mode
	// should not stop later label definitions from being tracked for
	// undefined-label reporting, so the forward reference to "end" made
	// before the error is resolved and only the syntax error is reported.
	_, errs := Assemble(`beq x1, x1, end
		out ,
		end: exit`)
	if errs == nil || !errs.HasErrors() {
		t.Fatalf("expected a syntax error")
	}
	if len(errs.Errors) != 1 || errs.Errors[0].Kind != ErrBadRegister {
		t.Fatalf("expected exactly one ErrBadRegister, got:\n%s", errs.Error())
	}
}
