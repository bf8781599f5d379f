package sample_test

import (
	"fmt"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/sample"
)

func ExampleCentral() {
	res, err := cdl.Analyze(sample.Central(), cdl.Options{Threshold: cdl.DefaultThreshold})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, s := range res.Signals {
		fmt.Printf("%s at %s (%.0fm, partial=%v)\n", s.ID, s.PlacedAt, s.DistanceToZone, s.Partial())
	}
	// Output:
	// SIG_ENTRY_B_to_SWITCH_B1 at ENTRY_B (200m, partial=true)
	// SIG_SWITCH_A1_to_SWITCH_B1 at ENTRY_A (400m, partial=true)
}

func ExampleJunction() {
	res, err := cdl.Analyze(sample.Junction(), cdl.Options{Threshold: 500})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, s := range res.Signals {
		fmt.Printf("%s at %s (%.0fm)\n", s.ID, s.PlacedAt, s.DistanceToZone)
	}
	// Output:
	// SIG_TRACK_A2_to_SWITCH_AB at TRACK_A1 (650m)
	// SIG_TRACK_B2_to_SWITCH_AB at TRACK_B1 (650m)
	// SIG_TRACK_C1_to_SWITCH_MAIN at TRACK_C1 (950m)
	// SIG_SWITCH_AB_to_SWITCH_MAIN at TRACK_A2 (650m)
}
