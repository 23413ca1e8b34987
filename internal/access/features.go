package access

import (
	"fmt"
	"strings"
)

// Feature is a flag category. Each gated operation belongs to exactly one.
type Feature uint8

// Feature categories.
const (
	featureUnknown Feature = iota
	FeatureMint
	FeatureBurn
	FeaturePause
	FeatureStake
	FeatureTransfer
	FeatureChangeOwner
)

var featureNames = map[Feature]string{
	FeatureMint:        "mint",
	FeatureBurn:        "burn",
	FeaturePause:       "pause",
	FeatureStake:       "stake",
	FeatureTransfer:    "transfer",
	FeatureChangeOwner: "change-owner",
}

// AllFeatures returns every feature in declaration order.
func AllFeatures() []Feature {
	return []Feature{FeatureMint, FeatureBurn, FeaturePause, FeatureStake, FeatureTransfer, FeatureChangeOwner}
}

func (f Feature) String() string {
	if n, ok := featureNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Feature(%d)", uint8(f))
}

// ParseFeature parses a feature name ("mint", "canMint", "change-owner").
func ParseFeature(s string) (Feature, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	in = strings.TrimPrefix(in, "can")
	in = strings.ReplaceAll(in, "_", "-")
	if in == "changeowner" {
		return FeatureChangeOwner, nil
	}
	for f, n := range featureNames {
		if n == in {
			return f, nil
		}
	}
	return featureUnknown, fmt.Errorf("unknown feature %q", s)
}

// Features is the set of per-category enable flags.
type Features struct {
	CanMint        bool `json:"canMint"`
	CanBurn        bool `json:"canBurn"`
	CanPause       bool `json:"canPause"`
	CanStake       bool `json:"canStake"`
	CanTransfer    bool `json:"canTransfer"`
	CanChangeOwner bool `json:"canChangeOwner"`
}

// AllEnabled returns a Features value with every flag set.
func AllEnabled() Features {
	return Features{
		CanMint:        true,
		CanBurn:        true,
		CanPause:       true,
		CanStake:       true,
		CanTransfer:    true,
		CanChangeOwner: true,
	}
}

// Enabled reports the flag for f. Unknown categories are disabled.
func (fs Features) Enabled(f Feature) bool {
	switch f {
	case FeatureMint:
		return fs.CanMint
	case FeatureBurn:
		return fs.CanBurn
	case FeaturePause:
		return fs.CanPause
	case FeatureStake:
		return fs.CanStake
	case FeatureTransfer:
		return fs.CanTransfer
	case FeatureChangeOwner:
		return fs.CanChangeOwner
	}
	return false
}

// With returns a copy of fs with f set to on.
func (fs Features) With(f Feature, on bool) Features {
	switch f {
	case FeatureMint:
		fs.CanMint = on
	case FeatureBurn:
		fs.CanBurn = on
	case FeaturePause:
		fs.CanPause = on
	case FeatureStake:
		fs.CanStake = on
	case FeatureTransfer:
		fs.CanTransfer = on
	case FeatureChangeOwner:
		fs.CanChangeOwner = on
	}
	return fs
}
