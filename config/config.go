// Package config parses the `key:subkey=value` option syntax spec.md §6
// names for the CLI's `video:`/`serial:`/`cmos:` flag families plus the
// bare `fasttape` flag, into a typed Options struct bbc.Machine consumes.
//
// Grounded on _examples/original_source/config.c's model-selection option
// tables (per-model ROM name/sideways-RAM layout lists), generalized from
// "apply a hardcoded table for one named model" to "parse an option string
// into a struct", since this module's CLI surface (spec.md §6) describes
// option syntax rather than a fixed model table; the model-selection part
// of config.c is instead covered by Options.Model, a plain enum switch in
// bbc.New.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Model selects the machine variant bbc.Machine wires up.
type Model int

const (
	ModelB Model = iota
	ModelBPlus
	ModelMaster128
)

// Options is the parsed form of the CLI's opt/log/debug flags (spec.md
// §6): "model selection, disc/tape paths, ROM paths, opt flags
// (video:border-chars=N, video:interlace-wobble, video:frame-boundaries,
// fasttape, ...), log flags (serial:state, serial:bytes, cmos:all, ...),
// debug enable".
type Options struct {
	Model Model

	OSROMPath       string
	SidewaysROMPath [16]string
	DiscPath        string
	TapePath        string

	VideoBorderChars     int
	VideoInterlaceWobble bool
	VideoFrameBoundaries bool

	FastTape bool

	LogSerialState bool
	LogSerialBytes bool
	LogCMOSAll     bool

	DebugEnable bool
}

// Default returns Options with the documented power-on defaults: Model B,
// no border padding, wobble/frame-boundary logging off.
func Default() Options {
	return Options{
		Model:            ModelB,
		VideoBorderChars: 0,
	}
}

// ParseModel maps a --model flag value to a Model, the bare-string
// counterpart of config.c's per-model apply functions.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(s) {
	case "b", "model-b":
		return ModelB, nil
	case "b+", "model-b-plus":
		return ModelBPlus, nil
	case "master", "master128", "master-128":
		return ModelMaster128, nil
	default:
		return 0, fmt.Errorf("config: unknown model %q", s)
	}
}

// Apply parses one `key:subkey=value` (or bare `key`/`key:subkey`) option
// string from the opt/log flag families and sets the corresponding field
// on o. Unknown keys are returned as an error rather than silently
// ignored, since an option the user explicitly asked for and that this
// module doesn't recognize is a usage error, not a degraded-but-running
// emulated-machine condition.
func (o *Options) Apply(opt string) error {
	key, value, hasValue := strings.Cut(opt, "=")

	switch key {
	case "video:border-chars":
		if !hasValue {
			return fmt.Errorf("config: %q requires a value", key)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %q: %w", key, err)
		}
		o.VideoBorderChars = n
	case "video:interlace-wobble":
		o.VideoInterlaceWobble = true
	case "video:frame-boundaries":
		o.VideoFrameBoundaries = true
	case "fasttape":
		o.FastTape = true
	case "serial:state":
		o.LogSerialState = true
	case "serial:bytes":
		o.LogSerialBytes = true
	case "cmos:all":
		o.LogCMOSAll = true
	default:
		return fmt.Errorf("config: unknown option %q", key)
	}
	return nil
}
