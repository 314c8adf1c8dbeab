package newsfeed

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// ImpactDirection is the predicted market direction of a news item.
type ImpactDirection string

const (
	ImpactUp     ImpactDirection = "up"
	ImpactDown   ImpactDirection = "down"
	ImpactStable ImpactDirection = "stable"
)

// Impact timeframes.
const (
	TimeframeImmediate = "immediate"
	TimeframeShortTerm = "short-term"
	TimeframeLongTerm  = "long-term"
)

// Impact is the parsed market-impact prediction of one article analysis.
type Impact struct {
	Direction    ImpactDirection
	MagnitudePct float64
	Timeframe    string
}

// impactPattern matches the provider's market-impact grammar:
// "<up|down|stable> (<magnitude>%) <immediate|short-term|long-term>".
var impactPattern = regexp.MustCompile(`^(up|down|stable)\s*\((\d+(?:\.\d+)?)%\)\s*(immediate|short-term|long-term)$`)

// ParseMarketImpact parses a market-impact string of the form
// "up (3.5%) short-term". Parsing is case-insensitive and tolerant of
// surrounding whitespace.
func ParseMarketImpact(s string) (Impact, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	matches := impactPattern.FindStringSubmatch(normalized)
	if matches == nil {
		return Impact{}, errors.Newf(errors.ErrCodeImpactParseFailed, "unrecognized market impact %q", s)
	}

	magnitude, err := strconv.ParseFloat(matches[2], 64)
	if err != nil {
		return Impact{}, errors.Wrapf(errors.ErrCodeImpactParseFailed, err, "invalid magnitude in %q", s)
	}

	return Impact{
		Direction:    ImpactDirection(matches[1]),
		MagnitudePct: magnitude,
		Timeframe:    matches[3],
	}, nil
}
