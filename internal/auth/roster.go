package auth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roster lists the users holding elevated tiers. Everyone else logs in as a player.
type Roster struct {
	Admins  []string `yaml:"admins"`
	Leaders []string `yaml:"leaders"`
}

// LoadRoster reads a YAML roster file. A missing file yields an empty roster.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Roster{}, nil
		}
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}
	return &roster, nil
}

// TierFor returns the tier granted to user at login
func (r *Roster) TierFor(user string) Tier {
	if contains(r.Admins, user) {
		return Admin
	}
	if contains(r.Leaders, user) {
		return FactionLeader
	}
	return Player
}

func contains(users []string, user string) bool {
	for _, u := range users {
		if strings.EqualFold(u, user) {
			return true
		}
	}
	return false
}
