package core

// PlanDistribution splits accepted records across exactly RequiredTargets
// targets. With n records, base = n / RequiredTargets and
// remainder = n % RequiredTargets; the first remainder targets (in the
// given order) receive base+1 records and the rest receive base.
// Records are sliced contiguously, so concatenating the allocations in
// target order reproduces accepted exactly.
//
// The target count is checked before anything is allocated.
func PlanDistribution(fileName string, accepted []ContactRecord, rejections []RowRejection, targets []DistributionTarget) (*DistributionPlan, error) {
	if len(targets) != RequiredTargets {
		return nil, &TargetCountError{Found: len(targets)}
	}

	n := len(accepted)
	base := n / RequiredTargets
	remainder := n % RequiredTargets

	allocations := make([]AgentAllocation, len(targets))
	start := 0
	for i, target := range targets {
		size := base
		if i < remainder {
			size++
		}

		records := make([]ContactRecord, size)
		copy(records, accepted[start:start+size])

		allocations[i] = AgentAllocation{
			Target:  target,
			Records: records,
			Count:   size,
		}
		start += size
	}

	rejected := make([]RowRejection, len(rejections))
	copy(rejected, rejections)

	return &DistributionPlan{
		SourceFileName: fileName,
		TotalAccepted:  n,
		Allocations:    allocations,
		RejectedCount:  len(rejected),
		Rejections:     rejected,
	}, nil
}
