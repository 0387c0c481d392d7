package gamma

import "strings"

// ContractType is the option side of a contract row.
type ContractType string

const (
	Call ContractType = "call"
	Put  ContractType = "put"
)

// ParseContractType accepts call/c/put/p in any case.
// Anything else yields an empty ContractType.
func ParseContractType(s string) ContractType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call
	case "put", "p":
		return Put
	default:
		return ""
	}
}

// ContractRow is one option contract observation from a single-expiry chain.
// Zero values for Volume, OpenInterest and Gamma mean the field was absent.
type ContractRow struct {
	Strike       float64
	Type         ContractType
	Volume       int64
	OpenInterest int64
	Gamma        float64
}

// StrikeAggregate holds dealer gamma summed over every row sharing a strike.
type StrikeAggregate struct {
	Strike          float64 `json:"strike"`
	DealerGammaCall float64 `json:"call_gamma"`
	DealerGammaPut  float64 `json:"put_gamma"`
	NetGamma        float64 `json:"net_gamma"`
	VolumeSum       int64   `json:"volume"`
	OpenInterestSum int64   `json:"open_interest"`
}

// Level is a strike picked by one of the level searches together with the
// signed gamma that selected it.
type Level struct {
	Strike float64 `json:"strike"`
	Gamma  float64 `json:"gamma"`
}

// LevelSet holds the named levels. A nil field means no strike qualified.
type LevelSet struct {
	PutWall   *Level `json:"put_wall,omitempty"`
	CallWall  *Level `json:"call_wall,omitempty"`
	GammaFlip *Level `json:"gamma_flip,omitempty"`
}

// Level names used by downstream consumers.
const (
	LevelPutWall   = "put_wall"
	LevelCallWall  = "call_wall"
	LevelGammaFlip = "gamma_flip"
)

// Named returns the present levels in put wall, call wall, gamma flip order.
func (s LevelSet) Named() []NamedLevel {
	var out []NamedLevel
	if s.PutWall != nil {
		out = append(out, NamedLevel{Name: LevelPutWall, Level: *s.PutWall})
	}
	if s.CallWall != nil {
		out = append(out, NamedLevel{Name: LevelCallWall, Level: *s.CallWall})
	}
	if s.GammaFlip != nil {
		out = append(out, NamedLevel{Name: LevelGammaFlip, Level: *s.GammaFlip})
	}
	return out
}

type NamedLevel struct {
	Name string
	Level
}

// RankedStrike is a StrikeAggregate with its importance score.
type RankedStrike struct {
	StrikeAggregate
	Score float64 `json:"score"`
}

// Result is the full output of one analysis.
type Result struct {
	ReferencePrice float64           `json:"reference_price"`
	Strikes        []StrikeAggregate `json:"strikes"`
	Levels         LevelSet          `json:"levels"`
	Ranked         []RankedStrike    `json:"ranked"`
	Regime         Regime            `json:"regime"`
}
