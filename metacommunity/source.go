package metacommunity

import (
	"os"

	"github.com/archipelago-eco/archipelago/errors"
)

// SourceKind enumerates the generation strategies for the regional pool.
type SourceKind int

const (
	// SourceUniform spreads J_m individuals evenly across S_m species.
	SourceUniform SourceKind = iota
	// SourceLogNormal draws abundances from a log-normal distribution.
	// Diagnostic/testing variant.
	SourceLogNormal
	// SourceLogSeries is the primary model: a simulated birth-death
	// phylogeny with Brownian traits and log-series abundances.
	SourceLogSeries
	// SourceFile reads species definitions from a file.
	SourceFile
)

// Source keywords accepted in configuration.
const (
	KeywordUniform   = "uniform"
	KeywordLogNormal = "lognorm"
	KeywordLogSeries = "logser"
)

// Source is the resolved generation source: a recognized keyword or an
// existing file path, decided once at configuration time.
type Source struct {
	Kind SourceKind
	Path string // set only for SourceFile
}

// ResolveSource interprets a configured source string. A string that is not
// a recognized keyword must name an existing file.
func ResolveSource(s string) (Source, error) {
	switch s {
	case KeywordUniform:
		return Source{Kind: SourceUniform}, nil
	case KeywordLogNormal:
		return Source{Kind: SourceLogNormal}, nil
	case KeywordLogSeries:
		return Source{Kind: SourceLogSeries}, nil
	}
	if info, err := os.Stat(s); err == nil && !info.IsDir() {
		return Source{Kind: SourceFile, Path: s}, nil
	}
	return Source{}, errors.NewConfigurationError(
		"unrecognized metacommunity source %q: not a keyword (%s, %s, %s) and not an existing file",
		s, KeywordUniform, KeywordLogNormal, KeywordLogSeries)
}

// String returns the keyword or file path the source was resolved from.
func (s Source) String() string {
	switch s.Kind {
	case SourceUniform:
		return KeywordUniform
	case SourceLogNormal:
		return KeywordLogNormal
	case SourceLogSeries:
		return KeywordLogSeries
	case SourceFile:
		return s.Path
	}
	return "unknown"
}
