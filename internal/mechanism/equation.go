package mechanism

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type side map[string]float64

// parseEquation splits a reaction equation such as "H2 + M <=> H + H + M"
// into reactant and product coefficients. The third-body marker M is
// reported separately and must appear on both sides.
func parseEquation(eq string) (reactants, products side, reversible, thirdBody bool, err error) {
	var lhs, rhs string
	switch {
	case strings.Contains(eq, "<=>"):
		parts := strings.SplitN(eq, "<=>", 2)
		lhs, rhs, reversible = parts[0], parts[1], true
	case strings.Contains(eq, "=>"):
		parts := strings.SplitN(eq, "=>", 2)
		lhs, rhs = parts[0], parts[1]
	case strings.Contains(eq, "="):
		parts := strings.SplitN(eq, "=", 2)
		lhs, rhs, reversible = parts[0], parts[1], true
	default:
		return nil, nil, false, false, fmt.Errorf("equation %q has no arrow", eq)
	}
	if strings.Contains(eq, "(+") {
		return nil, nil, false, false, fmt.Errorf("equation %q: falloff reactions are not supported", eq)
	}

	var mLeft, mRight bool
	if reactants, mLeft, err = parseSide(lhs); err != nil {
		return nil, nil, false, false, fmt.Errorf("equation %q: %w", eq, err)
	}
	if products, mRight, err = parseSide(rhs); err != nil {
		return nil, nil, false, false, fmt.Errorf("equation %q: %w", eq, err)
	}
	if mLeft != mRight {
		return nil, nil, false, false, fmt.Errorf("equation %q: third body must appear on both sides", eq)
	}
	return reactants, products, reversible, mLeft, nil
}

func parseSide(s string) (side, bool, error) {
	out := side{}
	thirdBody := false
	for _, term := range strings.Split(s, "+") {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, false, fmt.Errorf("empty term")
		}
		coeff, name, err := parseTerm(term)
		if err != nil {
			return nil, false, err
		}
		if name == "M" {
			if thirdBody || coeff != 1 {
				return nil, false, fmt.Errorf("third body M may appear once with unit coefficient")
			}
			thirdBody = true
			continue
		}
		out[name] += coeff
	}
	if len(out) == 0 {
		return nil, false, fmt.Errorf("side %q names no species", s)
	}
	return out, thirdBody, nil
}

func parseTerm(term string) (float64, string, error) {
	if f := strings.Fields(term); len(f) == 2 {
		c, err := strconv.ParseFloat(f[0], 64)
		if err != nil || c <= 0 {
			return 0, "", fmt.Errorf("bad coefficient in %q", term)
		}
		return c, f[1], nil
	} else if len(f) != 1 {
		return 0, "", fmt.Errorf("bad term %q", term)
	}

	// "2OH" style: numeric prefix glued to the species name
	i := 0
	for i < len(term) && (unicode.IsDigit(rune(term[i])) || term[i] == '.') {
		i++
	}
	if i == 0 {
		return 1, term, nil
	}
	if i == len(term) {
		return 0, "", fmt.Errorf("term %q has no species", term)
	}
	c, err := strconv.ParseFloat(term[:i], 64)
	if err != nil || c <= 0 {
		return 0, "", fmt.Errorf("bad coefficient in %q", term)
	}
	return c, term[i:], nil
}
