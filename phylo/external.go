package phylo

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/kballard/go-shellquote"

	"github.com/archipelago-eco/archipelago/errors"
)

// ProtocolConstraint is the semver range of external simulator protocol
// versions this build can consume.
const ProtocolConstraint = "^1"

// protocolPrefix introduces the version header line of a response.
const protocolPrefix = "phylo/"

// ExternalSimulator shells out to a command honoring the simulator line
// protocol. The request is written to the command's stdin as a single line:
//
//	<J> <S> <speciation_rate> <death_proportion> <trait_rate>
//
// The expected response on stdout is:
//
//	phylo/<semver>                 version header
//	<newick>                       the phylogeny, Newick serialized
//	<a1> <a2> ... <aS>             species abundances
//	<id> <trait>                   one line per species
//
// The call blocks until the command exits; there is no timeout or
// cancellation. A non-zero exit, a protocol version outside
// ProtocolConstraint, or malformed output fails the generation attempt.
type ExternalSimulator struct {
	// Command is the full command line, split with shell quoting rules.
	Command string
}

var _ Simulator = (*ExternalSimulator)(nil)

// Simulate implements Simulator by invoking the configured command.
// The rng is unused: the external process owns its own randomness, so
// reproducibility across runs is the command's concern.
func (s *ExternalSimulator) Simulate(_ *rand.Rand, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	argv, err := shellquote.Split(s.Command)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid simulator command %q: %v", s.Command, err)
	}
	if len(argv) == 0 {
		return nil, errors.NewConfigurationError("empty simulator command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(fmt.Sprintf("%d %d %g %g %g\n",
		req.J, req.S, req.SpeciationRate, req.DeathProportion, req.TraitRate))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.NewGenerationError("simulator command %q failed: %v (stderr: %s)",
			argv[0], err, strings.TrimSpace(stderr.String()))
	}

	resp, err := parseResponse(stdout.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "simulator command %q returned malformed output", argv[0])
	}
	return resp, nil
}

// parseResponse decodes a protocol response, checking the version header
// against ProtocolConstraint.
func parseResponse(out []byte) (*Response, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header, err := nextLine(scanner)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(header, protocolPrefix) {
		return nil, errors.NewGenerationError("missing protocol header, got %q", header)
	}
	ver, err := semver.NewVersion(strings.TrimPrefix(header, protocolPrefix))
	if err != nil {
		return nil, errors.NewGenerationError("invalid protocol version in %q: %v", header, err)
	}
	constraint, err := semver.NewConstraint(ProtocolConstraint)
	if err != nil {
		return nil, errors.AssertionFailedf("bad protocol constraint %q: %v", ProtocolConstraint, err)
	}
	if !constraint.Check(ver) {
		return nil, errors.NewGenerationError("unsupported protocol version %s (supported: %s)",
			ver, ProtocolConstraint)
	}

	newick, err := nextLine(scanner)
	if err != nil {
		return nil, errors.Wrap(err, "missing newick line")
	}

	abundLine, err := nextLine(scanner)
	if err != nil {
		return nil, errors.Wrap(err, "missing abundance line")
	}
	fields := strings.Fields(abundLine)
	abundances := make([]float64, 0, len(fields))
	for _, f := range fields {
		a, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.NewGenerationError("invalid abundance %q: %v", f, err)
		}
		abundances = append(abundances, a)
	}

	traits := make(map[string]float64)
	var order []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, errors.NewGenerationError("invalid trait line %q", line)
		}
		trait, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, errors.NewGenerationError("invalid trait value %q: %v", parts[1], err)
		}
		if _, dup := traits[parts[0]]; dup {
			return nil, errors.NewGenerationError("duplicate species id %q in simulator output", parts[0])
		}
		traits[parts[0]] = trait
		order = append(order, parts[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading simulator output")
	}

	return &Response{
		Newick:     newick,
		Abundances: abundances,
		Traits:     traits,
		Order:      order,
	}, nil
}

func nextLine(scanner *bufio.Scanner) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "reading simulator output")
	}
	return "", errors.NewGenerationError("unexpected end of simulator output")
}
