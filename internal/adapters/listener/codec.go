package listener

import (
	"fmt"

	"github.com/chabad360/go-osc/osc"

	"github.com/tonefall/oscrec/internal/domain"
)

// decodePacket turns one datagram into its messages. Bundles are flattened
// in order; nested bundle timetags are ignored, every message is stamped
// with the packet's arrival instant downstream.
func decodePacket(data []byte) ([]domain.Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty datagram")
	}
	if isBundle(data) {
		b, err := osc.NewBundleFromData(data)
		if err != nil {
			return nil, fmt.Errorf("decode bundle: %w", err)
		}
		return flatten(b, nil), nil
	}

	m, err := osc.NewMessageFromData(data)
	if err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return []domain.Message{{Address: m.Address, Args: m.Arguments}}, nil
}

func isBundle(data []byte) bool {
	return len(data) >= 8 && string(data[:7]) == "#bundle"
}

func flatten(b *osc.Bundle, into []domain.Message) []domain.Message {
	for _, elem := range b.Elements {
		switch p := elem.(type) {
		case *osc.Message:
			into = append(into, domain.Message{Address: p.Address, Args: p.Arguments})
		case *osc.Bundle:
			into = flatten(p, into)
		}
	}
	return into
}
