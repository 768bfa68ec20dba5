package main

import (
	"testing"

	"github.com/tonefall/oscrec"
	"github.com/tonefall/oscrec/internal/scheme"
)

func TestDisplayPayloadPerScheme(t *testing.T) {
	args := []any{int32(1), "a", int32(2)}

	basic := scheme.Basic.Extract("/x", args)
	if got := displayPayload(oscrec.Record(basic)); len(got.([]any)) != 3 {
		t.Fatalf("basic should render its args, got %v", got)
	}

	dirtBasic := scheme.DirtBasic.Extract("/x", args)
	if got := displayPayload(oscrec.Record(dirtBasic)); got != int32(1) {
		t.Fatalf("dirt_basic should render its value, got %v", got)
	}

	onlyNumbers := scheme.OnlyNumbers.Extract("/x", args)
	if got := displayPayload(oscrec.Record(onlyNumbers)); len(got.([]any)) != 2 {
		t.Fatalf("only_numbers should render its numeric args, got %v", got)
	}
}
