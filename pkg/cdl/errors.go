package cdl

import "errors"

var (
	// ErrInvalidThreshold is returned when the placement distance is not a
	// positive finite number. It is raised before any traversal.
	ErrInvalidThreshold = errors.New("threshold must be positive")

	// ErrCycleDetected is returned when a backward walk revisits a node
	// before covering the threshold.
	ErrCycleDetected = errors.New("cycle detected in approach")

	// ErrNestedMerge is returned under BranchStrict when a backward walk
	// reaches a node with several predecessors.
	ErrNestedMerge = errors.New("approach reaches another merge")

	// ErrNotApproach is returned when a zone lists an approach that has no
	// edge into it, which means the zones were computed from another network.
	ErrNotApproach = errors.New("approach has no edge into zone")

	// ErrDuplicateSignal is returned by [Registry.Add] when a signal with the
	// same ID has already been registered.
	ErrDuplicateSignal = errors.New("duplicate signal")
)
