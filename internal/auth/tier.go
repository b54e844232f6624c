package auth

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is a privilege level. A session holding tier N may do anything that
// requires tier N or lower.
type Tier int

const (
	NotAuthorized Tier = iota
	Player
	FactionLeader
	Admin
	Server
)

var tierNames = map[Tier]string{
	NotAuthorized: "none",
	Player:        "player",
	FactionLeader: "faction-leader",
	Admin:         "admin",
	Server:        "server",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}

// Satisfies reports whether t meets the required tier.
func (t Tier) Satisfies(need Tier) bool {
	return t >= need
}

// ParseTier accepts either a tier name ("admin") or its number ("3").
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return NotAuthorized, fmt.Errorf("tier must be non-negative, got %d", n)
		}
		return Tier(n), nil
	}
	for tier, name := range tierNames {
		if name == s {
			return tier, nil
		}
	}
	return NotAuthorized, fmt.Errorf("unknown tier %q", s)
}
