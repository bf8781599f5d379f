package network

import (
	"fmt"
	"strings"
)

// Kind is the physical role of a node. The set is closed: being a CDL zone or
// carrying a signal is a derived fact recorded by package cdl, never a kind.
type Kind int

const (
	// KindTrack is a plain track section.
	KindTrack Kind = iota
	// KindSwitch is a turnout where tracks split or join.
	KindSwitch
	// KindPlatform is a platform track.
	KindPlatform
	// KindEntry is a point where trains enter the station.
	KindEntry
	// KindExit is a point where trains leave the station.
	KindExit
)

var kindNames = [...]string{
	KindTrack:    "track",
	KindSwitch:   "switch",
	KindPlatform: "platform",
	KindEntry:    "entry",
	KindExit:     "exit",
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindTrack, KindSwitch, KindPlatform, KindEntry, KindExit}
}

// String returns the lowercase name used in station files.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a station-file kind name into a Kind. An empty string
// maps to KindTrack. The legacy derived kinds "signal" and "cdl_zone" are
// rejected along with anything else outside the closed set.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "track":
		return KindTrack, nil
	case "switch", "turnout":
		return KindSwitch, nil
	case "platform":
		return KindPlatform, nil
	case "entry", "entry_point":
		return KindEntry, nil
	case "exit", "exit_point":
		return KindExit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
