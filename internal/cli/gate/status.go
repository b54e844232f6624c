package gate

import (
	"encoding/json"
	"errors"

	"github.com/terra-dev/terra/internal/auth"
)

// DefaultTier is the tier a check requires when the caller has no stronger need
const DefaultTier = auth.Player

var (
	ErrMissingField = errors.New("auth status is missing a field")
	ErrNegativeTier = errors.New("auth status tier is negative")
)

// Status is the session state reported by the server. It is fetched fresh for
// every check and never cached.
type Status struct {
	Auth bool      `json:"auth"`
	Tier auth.Tier `json:"tier"`
}

// Unauthorized is what every failed status retrieval collapses to
var Unauthorized = Status{Auth: false, Tier: auth.NotAuthorized}

// Authorized reports whether the status grants the required tier
func (s Status) Authorized(required auth.Tier) bool {
	return s.Auth && s.Tier.Satisfies(required)
}

// UnmarshalJSON only accepts a body carrying both fields and a non-negative
// integer tier, so a payload of the wrong shape is a decoding failure rather
// than a silent zero value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw struct {
		Auth *bool `json:"auth"`
		Tier *int  `json:"tier"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Auth == nil || raw.Tier == nil {
		return ErrMissingField
	}
	if *raw.Tier < 0 {
		return ErrNegativeTier
	}

	s.Auth = *raw.Auth
	s.Tier = auth.Tier(*raw.Tier)
	return nil
}

// Result is the outcome of one status retrieval, kept tagged so the failure
// reason can be logged before it is collapsed.
type Result struct {
	Status Status
	Err    error
}

// Ok reports whether the status was retrieved
func (r Result) Ok() bool {
	return r.Err == nil
}

// Collapse returns the retrieved status, or Unauthorized on failure
func (r Result) Collapse() Status {
	if r.Err != nil {
		return Unauthorized
	}
	return r.Status
}
