package services

import (
	"strings"

	"nala-backend/utils"
)

// CodeStrategy derives an access code for a settled order.
type CodeStrategy func(orderID string) string

// CodeGenerator picks a strategy by order-id prefix. Product families
// register their own strategy; anything unregistered gets the default
// random GG- code.
type CodeGenerator struct {
	prefixes   []string
	strategies map[string]CodeStrategy
	fallback   CodeStrategy
}

// NewCodeGenerator returns a generator preloaded with the live product
// families:
//   - class bookings (BELAJAR-/CLASS-) reuse the order id verbatim as the
//     code. Deliberate: the class flow hands the buyer their order id, and
//     the WA bot looks registrations up by it. Do not "fix" this to a
//     random code.
//   - everything else gets GG-<6 random uppercase alphanumerics>.
func NewCodeGenerator() *CodeGenerator {
	g := &CodeGenerator{
		strategies: make(map[string]CodeStrategy),
		fallback: func(string) string {
			return "GG-" + utils.RandomAlnumUpper(6)
		},
	}
	orderIDAsCode := func(orderID string) string { return orderID }
	g.Register("BELAJAR-", orderIDAsCode)
	g.Register("CLASS-", orderIDAsCode)
	return g
}

// Register binds a strategy to an order-id prefix. Later registrations win
// on overlapping prefixes.
func (g *CodeGenerator) Register(prefix string, s CodeStrategy) {
	if _, exists := g.strategies[prefix]; !exists {
		g.prefixes = append(g.prefixes, prefix)
	}
	g.strategies[prefix] = s
}

// CodeFor derives the access code for orderID.
func (g *CodeGenerator) CodeFor(orderID string) string {
	for i := len(g.prefixes) - 1; i >= 0; i-- {
		p := g.prefixes[i]
		if strings.HasPrefix(orderID, p) {
			return g.strategies[p](orderID)
		}
	}
	return g.fallback(orderID)
}
