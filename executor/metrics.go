package executor

import "github.com/nullmodel/llmvm/opcode"

// Metrics collects ambient execution statistics, grounded in the teacher's
// PerformanceStatistics (vm/statistics.go): not part of the core semantics,
// purely an observability side-channel a caller can inspect after Run
// returns (or via the Inspector hook, during the run).
type Metrics struct {
	InstructionCount uint64
	OpCounts         map[opcode.OpCode]uint64
}

func newMetrics() Metrics {
	return Metrics{OpCounts: make(map[opcode.OpCode]uint64)}
}

func (m *Metrics) record(op opcode.OpCode) {
	m.InstructionCount++
	m.OpCounts[op]++
}
