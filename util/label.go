// label.go generates unique assembly labels for jumps and rodata entries.
//
// The teacher ran this as a goroutine reachable only through request/reply
// channels, since multiple backend workers minted labels concurrently. With
// a single-threaded core there is no one else to serialize against: a plain
// counter table does the same job without the RPC plumbing.

package util

import "fmt"

// Label types for control-flow constructs.
const (
	LabelWhileHead = iota
	LabelWhileEnd
	LabelDoWhileHead
	LabelDoWhileEnd
	LabelForHead
	LabelForEnd
	LabelIf
	LabelIfElse
	LabelIfEnd
	LabelSwitchEnd
	LabelCase
	LabelString
	LabelFloat
	LabelDouble
	LabelFuncEnd
	labelCount
)

var labelPrefixes = [labelCount]string{
	"LWhileHead",
	"LWhileEnd",
	"LDoWhileHead",
	"LDoWhileEnd",
	"LForHead",
	"LForEnd",
	"LIf",
	"LIfElse",
	"LIfEnd",
	"LSwitchEnd",
	"LCase",
	"LC", // rodata string constant
	"LFLC", // rodata float constant
	"LDLC", // rodata double constant
	"LFuncEnd",
}

// Labeler mints unique assembly labels, keeping a per-type monotonic
// counter so labels read as e.g. LWhileHead_003.
type Labeler struct {
	indices [labelCount]int
}

// NewLabeler returns a Labeler with all counters at zero.
func NewLabeler() *Labeler {
	return &Labeler{}
}

// New returns a fresh label of type typ.
func (l *Labeler) New(typ int) string {
	if typ < 0 || typ >= labelCount {
		return "# LABEL ERROR"
	}
	s := fmt.Sprintf("%s_%03d", labelPrefixes[typ], l.indices[typ])
	l.indices[typ]++
	return s
}
