package pipeline

// Pipeline stage capacities and sizes
const (
	defaultStageCapacity = 2 // analysis + low-pass
	monoChannels         = 1
)
