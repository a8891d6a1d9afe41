package executor

import (
	"bytes"
	"context"
	"testing"

	"github.com/nullmodel/llmvm/assembler"
	"github.com/nullmodel/llmvm/languagelogic"
	"github.com/nullmodel/llmvm/vmcore"
)

// stubClient is a fixed-response languagelogic.LLMClient, standing in for
// the "stub LLM" spec.md's end-to-end scenarios describe.
type stubClient struct {
	chatReply string
	vectors   map[string][]float64
}

func (s *stubClient) ChatCompletion(ctx context.Context, model string, messages []vmcore.ContextMessage, sampler languagelogic.SamplerParams) (string, error) {
	return s.chatReply, nil
}

func (s *stubClient) Embedding(ctx context.Context, model, input string) ([]float64, error) {
	if v, ok := s.vectors[input]; ok {
		return v, nil
	}
	return []float64{1, 0, 0}, nil
}

func runProgram(t *testing.T, src string, client languagelogic.LLMClient) string {
	t.Helper()
	prog, errs := assembler.Assemble(src)
	if errs != nil {
		t.Fatalf("assemble: %s", errs.Error())
	}
	mem := vmcore.New(prog.Text, prog.Data)

	var out bytes.Buffer
	m := New(mem, client, languagelogic.Models{Text: "text-model", Embedding: "embed-model"}, &out)
	if err := m.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestScenarioBranchLessSkipsThirdLoad(t *testing.T) {
	got := runProgram(t, `
		li x1, 3
		li x2, 5
		blt x1, x2, end
		li x3, 7
		end: out x2
		exit
	`, &stubClient{})
	if got != "5\n" {
		t.Fatalf("got %q, want %q", got, "5\n")
	}
}

func TestScenarioBranchEqualTaken(t *testing.T) {
	got := runProgram(t, `
		li x1, 2
		li x2, 2
		beq x1, x2, same
		li x3, 9
		out x3
		exit
		same: li x3, 1
		out x3
		exit
	`, &stubClient{})
	if got != "1\n" {
		t.Fatalf("got %q, want %q", got, "1\n")
	}
}

func TestScenarioLoadStringAndOutput(t *testing.T) {
	got := runProgram(t, `ls x1, "hello"
		out x1
		exit`, &stubClient{})
	if got != "hello\n" {
		t.Fatalf("got %q, want %q", got, "hello\n")
	}
}

func TestScenarioAuditAlwaysYes(t *testing.T) {
	got := runProgram(t, `ls x1, "rule"
		aud x2, x1, x1
		out x2
		exit`, &stubClient{chatReply: "YES", vectors: map[string][]float64{"yes": {1, 0}, "no": {0, 1}}})
	if got != "100\n" {
		t.Fatalf("got %q, want %q", got, "100\n")
	}
}

func TestScenarioSimilarityOfIdenticalText(t *testing.T) {
	got := runProgram(t, `ls x1, "a"
		ls x2, "a"
		sim x3, x1, x2
		out x3
		exit`, &stubClient{chatReply: "cat", vectors: map[string][]float64{"a": {1, 2, 3}}})
	if got != "100\n" {
		t.Fatalf("got %q, want %q", got, "100\n")
	}
}

func TestScenarioLoopWithBackPatching(t *testing.T) {
	got := runProgram(t, `
		li x1, 3
		loop: dec x1, 1
		out x1
		li x2, 0
		bgt x1, x2, loop
		exit
	`, &stubClient{})
	if got != "2\n1\n0\n" {
		t.Fatalf("got %q, want %q", got, "2\n1\n0\n")
	}
}

func TestDecrementUnderflowLeavesRegisterUnchangedAndErrors(t *testing.T) {
	prog, errs := assembler.Assemble(`li x1, 0
		dec x1, 1
		exit`)
	if errs != nil {
		t.Fatalf("assemble: %s", errs.Error())
	}
	mem := vmcore.New(prog.Text, prog.Data)
	m := New(mem, &stubClient{}, languagelogic.Models{}, &bytes.Buffer{})

	err := m.Run(context.Background(), RunOptions{})
	if err == nil {
		t.Fatalf("expected a decrement underflow error")
	}
	ee, ok := err.(*Error)
	if !ok || ee.Kind != ErrDecrementUnderflow {
		t.Fatalf("got %v", err)
	}
	if n, _ := m.Registers().Get(1).AsNumber(); n != 0 {
		t.Fatalf("register x1 changed to %d, want unchanged 0", n)
	}
}

func TestContextSnapshotClearRestoreRoundTrips(t *testing.T) {
	prog, errs := assembler.Assemble(`ls x1, "first"
		ctxpush x1
		ls x2, "second"
		ctxpush x2
		ctxsnap x3
		ctxclr
		ctxrestore x3
		ctxpop x4
		out x4
		exit`)
	if errs != nil {
		t.Fatalf("assemble: %s", errs.Error())
	}
	mem := vmcore.New(prog.Text, prog.Data)
	var out bytes.Buffer
	m := New(mem, &stubClient{}, languagelogic.Models{}, &out)
	if err := m.Run(context.Background(), RunOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "second\n" {
		t.Fatalf("got %q, want %q", out.String(), "second\n")
	}
}

func TestBranchOnNonNumberRegisterIsTypeMismatch(t *testing.T) {
	prog, errs := assembler.Assemble(`ls x1, "a"
		ls x2, "b"
		beq x1, x2, done
		done: exit`)
	if errs != nil {
		t.Fatalf("assemble: %s", errs.Error())
	}
	mem := vmcore.New(prog.Text, prog.Data)
	m := New(mem, &stubClient{}, languagelogic.Models{}, &bytes.Buffer{})
	err := m.Run(context.Background(), RunOptions{})
	ee, ok := err.(*Error)
	if !ok || ee.Kind != ErrTypeMismatch {
		t.Fatalf("got %v", err)
	}
}
