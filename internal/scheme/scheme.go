// Package scheme holds the extraction schemes that turn a decoded OSC
// message into a recording payload.
package scheme

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tonefall/oscrec/internal/domain"
)

// ErrUnknown is returned by Registry.Resolve for unregistered scheme names.
var ErrUnknown = errors.New("unknown scheme")

// Kind identifies one built-in extraction scheme. The set is closed: adding
// a scheme means a new constant, a case in Extract, and a row in
// NewRegistry, all at compile time.
type Kind uint8

const (
	Basic Kind = iota
	DirtBasic
	DirtStrip
	OnlyNumbers
)

func (k Kind) String() string {
	switch k {
	case Basic:
		return "basic"
	case DirtBasic:
		return "dirt_basic"
	case DirtStrip:
		return "dirt_strip"
	case OnlyNumbers:
		return "only_numbers"
	}
	return fmt.Sprintf("scheme(%d)", uint8(k))
}

// Extract applies the scheme to one message. Every scheme is pure and total:
// empty or short argument lists degrade to null/empty output, never an
// error. The input slice is never retained or mutated.
func (k Kind) Extract(address string, args []any) domain.Record {
	switch k {
	case Basic:
		out := make([]any, len(args))
		copy(out, args)
		return domain.Record{"address": address, "args": out}

	case DirtBasic:
		var v any
		if len(args) > 0 {
			v = args[0]
		}
		return domain.Record{"address": address, "value": v}

	case DirtStrip:
		// keep every second argument starting at index 1
		out := make([]any, 0, len(args)/2)
		for i := 1; i < len(args); i += 2 {
			out = append(out, args[i])
		}
		return domain.Record{"address": address, "args": out}

	case OnlyNumbers:
		out := make([]any, 0, len(args))
		for _, a := range args {
			if isNumber(a) {
				out = append(out, a)
			}
		}
		return domain.Record{"address": address, "args": out}
	}
	return domain.Record{"address": address}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

// Registry maps scheme names to kinds. It is read-only after construction
// and is injected into the session rather than living as a package global.
type Registry struct {
	byName map[string]Kind
}

func NewRegistry() Registry {
	return Registry{byName: map[string]Kind{
		Basic.String():       Basic,
		DirtBasic.String():   DirtBasic,
		DirtStrip.String():   DirtStrip,
		OnlyNumbers.String(): OnlyNumbers,
	}}
}

// Resolve returns the kind registered under name, or ErrUnknown.
func (r Registry) Resolve(name string) (Kind, error) {
	k, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return k, nil
}

// Names lists the registered scheme names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
