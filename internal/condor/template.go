// Package condor renders HTCondor submit descriptions and the scripts the
// merge jobs run.
package condor

import "strings"

const (
	KeyExecutable         = "Executable"
	KeyArguments          = "Arguments"
	KeyTransferInputFiles = "Transfer_Input_files"
	KeyQueue              = "Queue"

	processMacro = "$(Process)"
)

// Option is one line of a submit description. BlankAfter adds an empty line
// after it when rendered.
type Option struct {
	Key        string
	Value      string
	BlankAfter bool
}

// DefaultTemplate returns a fresh copy of the merge job template. Empty
// values are placeholders filled at render time.
func DefaultTemplate() []Option {
	return []Option{
		{Key: KeyExecutable},
		{Key: "Universe", Value: "vanilla"},
		{Key: "Getenv", Value: "True"},
		{Key: "Requirements"},
		{Key: KeyArguments, BlankAfter: true},
		{Key: "Output", Value: "condor_$(Process).out"},
		{Key: "Error", Value: "condor_$(Process).err"},
		{Key: "Log", Value: "condor_$(Process).log", BlankAfter: true},
		{Key: KeyTransferInputFiles},
		{Key: "+IsLocalJob", Value: "true"},
		{Key: "Rank", Value: "TARGET.IsLocalSlot", BlankAfter: true},
		{Key: KeyQueue},
	}
}

// Merge applies overrides to template without touching either input. Keys
// match case-insensitively; known keys keep their position, new keys are
// inserted before Queue in override order.
func Merge(template []Option, overrides []Option) []Option {
	out := make([]Option, len(template))
	copy(out, template)

	var extra []Option
	for _, o := range overrides {
		if i := indexOf(out, o.Key); i >= 0 {
			out[i].Value = o.Value
			continue
		}
		if i := indexOf(extra, o.Key); i >= 0 {
			extra[i].Value = o.Value
			continue
		}
		extra = append(extra, Option{Key: o.Key, Value: o.Value})
	}
	if len(extra) == 0 {
		return out
	}

	q := indexOf(out, KeyQueue)
	if q < 0 {
		return append(out, extra...)
	}
	merged := make([]Option, 0, len(out)+len(extra))
	merged = append(merged, out[:q]...)
	merged = append(merged, extra...)
	merged = append(merged, out[q:]...)
	return merged
}

// Lookup returns the value for key, if present.
func Lookup(opts []Option, key string) (string, bool) {
	if i := indexOf(opts, key); i >= 0 {
		return opts[i].Value, true
	}
	return "", false
}

func indexOf(opts []Option, key string) int {
	k := strings.TrimSpace(key)
	for i, o := range opts {
		if strings.EqualFold(strings.TrimSpace(o.Key), k) {
			return i
		}
	}
	return -1
}
