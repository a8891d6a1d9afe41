// Package inspector builds a read-only terminal UI over a running
// *executor.Machine: a live view of the register file, the context stack
// and the most recent output, wired in via executor.RunOptions.Inspector.
// Grounded in the teacher's debugger.TUI panel layout (debugger/tui.go),
// trimmed to the panels this instruction set actually has state for — no
// source/disassembly/breakpoint panels, since this is observation-only,
// not an interactive debugger.
package inspector

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nullmodel/llmvm/executor"
	"github.com/nullmodel/llmvm/vmcore"
)

// Inspector is a read-only tview application that mirrors a Machine's
// state after every instruction.
type Inspector struct {
	App *tview.Application

	registerView *tview.TextView
	contextView  *tview.TextView
	outputView   *tview.TextView
	statusView   *tview.TextView

	layout *tview.Flex
}

// New builds an Inspector with all panels initialized but empty; call
// Hook to wire it to a Machine and Run to start the event loop.
func New() *Inspector {
	ins := &Inspector{App: tview.NewApplication()}
	ins.initViews()
	ins.buildLayout()
	return ins
}

func (ins *Inspector) initViews() {
	ins.registerView = tview.NewTextView().SetDynamicColors(true)
	ins.registerView.SetBorder(true).SetTitle(" Registers ")

	ins.contextView = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	ins.contextView.SetBorder(true).SetTitle(" Context Stack ")

	ins.outputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	ins.outputView.SetBorder(true).SetTitle(" Output ")

	ins.statusView = tview.NewTextView().SetDynamicColors(true)
	ins.statusView.SetBorder(true).SetTitle(" Status ")
}

func (ins *Inspector) buildLayout() {
	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ins.statusView, 3, 0, false).
		AddItem(ins.registerView, 0, 2, false).
		AddItem(ins.contextView, 0, 1, false)

	ins.layout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(left, 0, 1, false).
		AddItem(ins.outputView, 0, 1, false)

	ins.App.SetRoot(ins.layout, true)
	ins.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			ins.App.Stop()
			return nil
		}
		return event
	})
}

// Hook returns an executor.StepHook that redraws every panel from m's
// current state. Pass it as RunOptions.Inspector.
func (ins *Inspector) Hook() executor.StepHook {
	return func(m *executor.Machine) {
		ins.refresh(m)
	}
}

// refresh is called synchronously from the machine's own goroutine (via the
// StepHook, right after a step completes and before the next one starts),
// so every Machine read here is safe. The rendered strings are captured now
// and only handed to QueueUpdateDraw's closure, which runs later on tview's
// own goroutine — the closure must not touch m itself, since by the time it
// runs the machine goroutine may already be several instructions further
// along.
func (ins *Inspector) refresh(m *executor.Machine) {
	status := fmt.Sprintf("state=%s ip=%d instructions=%d", m.State(), m.Registers().IP, m.Metrics().InstructionCount)
	registers := renderRegisters(m.Registers())
	contextStack := renderContext(m.Registers().Stack())
	output := strings.Join(m.OutputLog(), "\n")

	ins.App.QueueUpdateDraw(func() {
		ins.statusView.SetText(status)
		ins.registerView.SetText(registers)
		ins.contextView.SetText(contextStack)
		ins.outputView.SetText(output)
	})
}

func renderRegisters(regs *vmcore.Registers) string {
	var b strings.Builder
	for n := uint32(1); n <= vmcore.NumRegisters; n++ {
		v := regs.Get(n)
		if v.Kind() == vmcore.KindNone {
			continue
		}
		fmt.Fprintf(&b, "x%-2d = %s\n", n, v.String())
	}
	if b.Len() == 0 {
		return "(no registers written yet)"
	}
	return b.String()
}

func renderContext(stack []vmcore.ContextMessage) string {
	if len(stack) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, msg := range stack {
		fmt.Fprintf(&b, "%d: [%s] %s\n", i, msg.Role, msg.Content)
	}
	return b.String()
}

// Run starts the tview event loop. It blocks until the user quits
// (Ctrl-C) or Stop is called, typically from the goroutine driving
// Machine.Run once it returns.
func (ins *Inspector) Run() error {
	return ins.App.Run()
}

// Stop ends the event loop.
func (ins *Inspector) Stop() {
	ins.App.Stop()
}
