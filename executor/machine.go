// Package executor implements the fetch/decode/execute control loop: it
// mutates a vmcore.Registers file in place, dispatching ordinary
// instructions directly and semantic instructions through a
// languagelogic.LLMClient.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nullmodel/llmvm/decoder"
	"github.com/nullmodel/llmvm/languagelogic"
	"github.com/nullmodel/llmvm/opcode"
	"github.com/nullmodel/llmvm/vmcore"
)

// Machine is the control-loop facade (spec.md §2's "Control loop/Processor
// facade"): it owns the Memory, the Registers and the Language-Logic
// client, and drives them through Run. Grounded in the teacher's *vm.VM,
// which plays the same role for the ARM core (vm/executor.go).
type Machine struct {
	mem    *vmcore.Memory
	regs   *vmcore.Registers
	client languagelogic.LLMClient
	models languagelogic.Models

	out   io.Writer
	debug *log.Logger

	state   State
	metrics Metrics

	outputLog []string
}

// New builds a Machine over an already-loaded image. out receives Output
// instruction text (defaults to os.Stdout if nil).
func New(mem *vmcore.Memory, client languagelogic.LLMClient, models languagelogic.Models, out io.Writer) *Machine {
	if out == nil {
		out = os.Stdout
	}
	regs := vmcore.NewRegisters()
	regs.DataBase = mem.DataBase()
	return &Machine{
		mem:     mem,
		regs:    regs,
		client:  client,
		models:  models,
		out:     out,
		state:   Running,
		metrics: newMetrics(),
	}
}

// SetDebugLogger enables trace logging of every fetch/decode/execute step,
// gated the way the teacher gates service/debugger_service.go's serviceLog:
// nil disables it.
func (m *Machine) SetDebugLogger(l *log.Logger) {
	m.debug = l
}

// Registers returns the live register file, for the inspector package's
// read-only terminal view.
func (m *Machine) Registers() *vmcore.Registers { return m.regs }

// Memory returns the loaded image.
func (m *Machine) Memory() *vmcore.Memory { return m.mem }

// State returns the current run state.
func (m *Machine) State() State { return m.state }

// Metrics returns a copy of the instruction counters collected so far.
func (m *Machine) Metrics() Metrics {
	cp := newMetrics()
	cp.InstructionCount = m.metrics.InstructionCount
	for op, n := range m.metrics.OpCounts {
		cp.OpCounts[op] = n
	}
	return cp
}

// OutputLog returns every line written by an Out instruction so far, most
// recent last.
func (m *Machine) OutputLog() []string {
	out := make([]string, len(m.outputLog))
	copy(out, m.outputLog)
	return out
}

// Run drives the fetch/decode/execute loop until the instruction pointer
// crosses into the data segment, Exit runs, or an error aborts the run.
// ctx is checked between instructions only — the loop itself has no
// suspension points besides the Language-Logic HTTP calls inside execute
// (spec.md §5).
func (m *Machine) Run(ctx context.Context, opts RunOptions) error {
	maxInstructions := opts.MaxInstructions
	if maxInstructions == 0 {
		maxInstructions = DefaultMaxInstructions
	}

	for m.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.regs.IP >= m.regs.DataBase {
			m.state = Halted
			return nil
		}
		if m.metrics.InstructionCount >= maxInstructions {
			return &Error{Kind: ErrInstructionBudgetExceeded, IP: m.regs.IP, Msg: fmt.Sprintf("exceeded %d instructions", maxInstructions)}
		}

		if err := m.step(ctx, opts); err != nil {
			return err
		}

		if opts.Inspector != nil {
			opts.Inspector(m)
		}
	}
	return nil
}

func (m *Machine) step(ctx context.Context, opts RunOptions) error {
	ip := m.regs.IP
	words, err := m.mem.Instruction(ip)
	if err != nil {
		return &Error{Kind: ErrUnknownOpcode, IP: ip, Msg: "fetch failed", Cause: err}
	}

	inst, err := decoder.Decode(words, m.mem)
	if err != nil {
		return &Error{Kind: ErrUnknownOpcode, IP: ip, Msg: "decode failed", Cause: err}
	}

	if m.debug != nil {
		m.debug.Printf("ip=%d op=%s inst=%+v", ip, inst.Op, inst)
	}

	m.metrics.record(inst.Op)

	nextIP := ip + 4
	halt := false

	switch inst.Op {
	case opcode.LoadString:
		if err := m.setReg(inst.Dst, vmcore.Text(inst.Text)); err != nil {
			return m.wrap(ip, err)
		}
	case opcode.LoadFile:
		contents, err := os.ReadFile(inst.Text)
		if err != nil {
			return &Error{Kind: ErrFileRead, IP: ip, Msg: fmt.Sprintf("reading %q", inst.Text), Cause: err}
		}
		if err := m.setReg(inst.Dst, vmcore.Text(string(contents))); err != nil {
			return m.wrap(ip, err)
		}
	case opcode.LoadImmediate:
		if err := m.setReg(inst.Dst, vmcore.Number(inst.Immediate)); err != nil {
			return m.wrap(ip, err)
		}
	case opcode.Move:
		v, err := m.getReg(inst.Src1)
		if err != nil {
			return m.wrap(ip, err)
		}
		if err := m.setReg(inst.Dst, v); err != nil {
			return m.wrap(ip, err)
		}

	case opcode.BranchEqual, opcode.BranchLess, opcode.BranchLessEqual, opcode.BranchGreater, opcode.BranchGreaterEqual:
		taken, err := m.evalBranch(ip, inst)
		if err != nil {
			return err
		}
		if taken {
			nextIP = inst.Target
		}

	case opcode.Out:
		if err := m.execOut(ip, inst, opts); err != nil {
			return err
		}

	case opcode.Exit:
		halt = true
		nextIP = m.mem.Len()

	case opcode.Morph, opcode.Project, opcode.Distill, opcode.Correlate:
		if err := m.execTextSemantic(ctx, ip, inst); err != nil {
			return err
		}
	case opcode.Audit:
		if err := m.execAudit(ctx, ip, inst); err != nil {
			return err
		}
	case opcode.Similarity:
		if err := m.execSimilarity(ctx, ip, inst); err != nil {
			return err
		}

	case opcode.ContextPush:
		v, err := m.getReg(inst.Src1)
		if err != nil {
			return m.wrap(ip, err)
		}
		m.regs.Push(v.Stringify())
	case opcode.ContextPop:
		msg, ok := m.regs.Pop()
		if !ok {
			return &Error{Kind: ErrEmptyContextStack, IP: ip, Msg: "ContextPop on an empty stack"}
		}
		if err := m.setReg(inst.Dst, vmcore.Text(msg.Content)); err != nil {
			return m.wrap(ip, err)
		}
	case opcode.ContextDrop:
		if _, ok := m.regs.Pop(); !ok {
			return &Error{Kind: ErrEmptyContextStack, IP: ip, Msg: "ContextDrop on an empty stack"}
		}
	case opcode.ContextClear:
		m.regs.Clear()
	case opcode.ContextSnapshot:
		raw, err := json.Marshal(m.regs.Stack())
		if err != nil {
			return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "serializing context stack", Cause: err}
		}
		if err := m.setReg(inst.Dst, vmcore.Text(string(raw))); err != nil {
			return m.wrap(ip, err)
		}
	case opcode.ContextRestore:
		v, err := m.getReg(inst.Src1)
		if err != nil {
			return m.wrap(ip, err)
		}
		text, ok := v.AsText()
		if !ok {
			return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "ContextRestore expects a Text register"}
		}
		var stack []vmcore.ContextMessage
		if err := json.Unmarshal([]byte(text), &stack); err != nil {
			return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "restored context is not valid JSON", Cause: err}
		}
		m.regs.Restore(stack)
	case opcode.ContextSetRole:
		m.regs.SetRole(inst.Text)

	case opcode.Decrement:
		if err := m.execDecrement(ip, inst); err != nil {
			return err
		}

	default:
		return &Error{Kind: ErrUnknownOpcode, IP: ip, Msg: fmt.Sprintf("opcode %v has no executor case", inst.Op)}
	}

	m.regs.IP = nextIP
	if halt {
		m.state = Halted
	}
	return nil
}

func (m *Machine) wrap(ip uint32, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		e.IP = ip
		return e
	}
	return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "register access failed", Cause: err}
}

func (m *Machine) getReg(n uint32) (vmcore.Value, error) {
	if !vmcore.Valid(n) {
		return vmcore.None, &Error{Kind: ErrRegisterOutOfRange, Msg: fmt.Sprintf("register %d is out of range", n)}
	}
	v := m.regs.Get(n)
	if v.Kind() == vmcore.KindNone {
		return vmcore.None, &Error{Kind: ErrUninitializedRegister, Msg: fmt.Sprintf("register %d has not been written", n)}
	}
	return v, nil
}

func (m *Machine) setReg(n uint32, v vmcore.Value) error {
	if !vmcore.Valid(n) {
		return &Error{Kind: ErrRegisterOutOfRange, Msg: fmt.Sprintf("register %d is out of range", n)}
	}
	m.regs.Set(n, v)
	return nil
}

func (m *Machine) evalBranch(ip uint32, inst decoder.Instruction) (bool, error) {
	v1, err := m.getReg(inst.Src1)
	if err != nil {
		return false, m.wrap(ip, err)
	}
	v2, err := m.getReg(inst.Src2)
	if err != nil {
		return false, m.wrap(ip, err)
	}
	n1, ok := v1.AsNumber()
	if !ok {
		return false, &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "branch operands must be Number"}
	}
	n2, ok := v2.AsNumber()
	if !ok {
		return false, &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "branch operands must be Number"}
	}

	switch inst.Op {
	case opcode.BranchEqual:
		return n1 == n2, nil
	case opcode.BranchLess:
		return n1 < n2, nil
	case opcode.BranchLessEqual:
		return n1 <= n2, nil
	case opcode.BranchGreater:
		return n1 > n2, nil
	default: // BranchGreaterEqual
		return n1 >= n2, nil
	}
}

func (m *Machine) execOut(ip uint32, inst decoder.Instruction, opts RunOptions) error {
	v, err := m.getReg(inst.Src1)
	if err != nil {
		return m.wrap(ip, err)
	}
	text := v.Stringify()
	if opts.Debug {
		text = fmt.Sprintf("x%d = %s", inst.Src1, text)
	}
	fmt.Fprintln(m.out, text)
	m.outputLog = append(m.outputLog, text)
	return nil
}

func (m *Machine) execDecrement(ip uint32, inst decoder.Instruction) error {
	v, err := m.getReg(inst.Src1)
	if err != nil {
		return m.wrap(ip, err)
	}
	n, ok := v.AsNumber()
	if !ok {
		return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "Decrement expects a Number register"}
	}
	if n < inst.Immediate {
		return &Error{Kind: ErrDecrementUnderflow, IP: ip, Msg: fmt.Sprintf("%d - %d underflows", n, inst.Immediate)}
	}
	return m.setReg(inst.Src1, vmcore.Number(n-inst.Immediate))
}

func (m *Machine) execTextSemantic(ctx context.Context, ip uint32, inst decoder.Instruction) error {
	v, err := m.getReg(inst.Src1)
	if err != nil {
		return m.wrap(ip, err)
	}
	text, ok := v.AsText()
	if !ok {
		return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "expected a Text register"}
	}

	var prompt string
	switch inst.Op {
	case opcode.Morph:
		prompt = languagelogic.MorphPrompt(text)
	case opcode.Project:
		prompt = languagelogic.ProjectPrompt(text)
	case opcode.Distill:
		prompt = languagelogic.DistillPrompt(text)
	case opcode.Correlate:
		prompt = languagelogic.CorrelatePrompt(text)
	}

	result, err := languagelogic.String(ctx, m.client, m.models, prompt, m.regs.Stack())
	if err != nil {
		return &Error{Kind: ErrLanguageLogicFailure, IP: ip, Msg: "calling Language-Logic string", Cause: err}
	}
	return m.wrap(ip, m.setReg(inst.Dst, vmcore.Text(result)))
}

func (m *Machine) execAudit(ctx context.Context, ip uint32, inst decoder.Instruction) error {
	v, err := m.getReg(inst.Src1)
	if err != nil {
		return m.wrap(ip, err)
	}
	text, ok := v.AsText()
	if !ok {
		return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "Audit expects a Text register"}
	}

	prompt := languagelogic.AuditPrompt(text)
	result, err := languagelogic.Boolean(ctx, m.client, m.models, prompt, []string{"YES"}, []string{"NO"}, m.regs.Stack())
	if err != nil {
		return &Error{Kind: ErrLanguageLogicFailure, IP: ip, Msg: "calling Language-Logic boolean", Cause: err}
	}
	return m.wrap(ip, m.setReg(inst.Dst, vmcore.Number(result)))
}

func (m *Machine) execSimilarity(ctx context.Context, ip uint32, inst decoder.Instruction) error {
	v1, err := m.getReg(inst.Src1)
	if err != nil {
		return m.wrap(ip, err)
	}
	v2, err := m.getReg(inst.Src2)
	if err != nil {
		return m.wrap(ip, err)
	}
	t1, ok1 := v1.AsText()
	t2, ok2 := v2.AsText()
	if !ok1 || !ok2 {
		return &Error{Kind: ErrTypeMismatch, IP: ip, Msg: "Similarity expects two Text registers"}
	}

	result, err := languagelogic.CosineSimilarity(ctx, m.client, m.models.Embedding, t1, t2)
	if err != nil {
		return &Error{Kind: ErrLanguageLogicFailure, IP: ip, Msg: "calling Language-Logic cosine_similarity", Cause: err}
	}
	return m.wrap(ip, m.setReg(inst.Dst, vmcore.Number(result)))
}
