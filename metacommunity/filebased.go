package metacommunity

import (
	"os"
	"strconv"
	"strings"

	"github.com/archipelago-eco/archipelago/errors"
)

// fileCommunity is the result of parsing a community specification file.
type fileCommunity struct {
	abundances []float64
	ids        []string
	traits     []float64

	// full-format header values; meaningful only when fullFormat is set
	fullFormat bool
	treeHeight float64
	traitRate  float64
}

// parseCommunityFile reads a community specification file. Two layouts are
// supported, tried in order:
//
//  1. Full format: line 1 is the phylogeny height, line 2 the trait
//     evolution rate, and every further line an "<id> <trait> <abundance>"
//     triple.
//  2. Legacy format: one non-negative integer abundance per line.
//
// The legacy parse is attempted on any structural failure of the full
// format. If neither layout parses, the error names the file and the
// underlying parse failures.
func parseCommunityFile(path string) (*fileCommunity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewGenerationError("cannot read community file %s: %v", path, err)
	}

	lines := make([]string, 0, 64)
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	full, fullErr := parseFullFormat(lines)
	if fullErr == nil {
		return full, nil
	}

	legacy, legacyErr := parseLegacyFormat(lines)
	if legacyErr == nil {
		return legacy, nil
	}

	return nil, errors.NewGenerationError(
		"malformed community file %s: not full format (%v) and not legacy format (%v)",
		path, fullErr, legacyErr)
}

// parseFullFormat parses the header+triples layout.
func parseFullFormat(lines []string) (*fileCommunity, error) {
	if len(lines) < 3 {
		return nil, errors.Newf("need at least 3 lines (2 header lines plus species rows), got %d", len(lines))
	}

	height, err := strconv.ParseFloat(strings.Fields(lines[0])[0], 64)
	if err != nil {
		return nil, errors.Newf("invalid phylogeny height %q", lines[0])
	}
	rate, err := strconv.ParseFloat(strings.Fields(lines[1])[0], 64)
	if err != nil {
		return nil, errors.Newf("invalid trait evolution rate %q", lines[1])
	}

	fc := &fileCommunity{
		fullFormat: true,
		treeHeight: height,
		traitRate:  rate,
	}
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Newf("species row %q does not have id, trait, and abundance columns", line)
		}
		trait, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Newf("invalid trait value %q in row %q", fields[1], line)
		}
		abundance, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, errors.Newf("invalid abundance %q in row %q", fields[2], line)
		}
		if abundance < 0 {
			return nil, errors.Newf("negative abundance %d in row %q", abundance, line)
		}
		fc.ids = append(fc.ids, fields[0])
		fc.traits = append(fc.traits, trait)
		fc.abundances = append(fc.abundances, float64(abundance))
	}
	return fc, nil
}

// parseLegacyFormat parses the bare-abundances layout. Ids and traits are
// left empty and filled with defaults during table construction.
func parseLegacyFormat(lines []string) (*fileCommunity, error) {
	if len(lines) == 0 {
		return nil, errors.New("file is empty")
	}
	fc := &fileCommunity{}
	for _, line := range lines {
		abundance, err := strconv.ParseInt(strings.Fields(line)[0], 10, 64)
		if err != nil {
			return nil, errors.Newf("invalid abundance line %q", line)
		}
		if abundance < 0 {
			return nil, errors.Newf("negative abundance %d", abundance)
		}
		fc.abundances = append(fc.abundances, float64(abundance))
	}
	return fc, nil
}
