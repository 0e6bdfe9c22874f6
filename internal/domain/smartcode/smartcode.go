package smartcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hera/backend/internal/domain/shared"
)

// Smart codes carry the business meaning of every record. The grammar is
//
//	HERA.<INDUSTRY>.<SEGMENT>...<SEGMENT>.v<N>
//
// where the industry plus inner segments form 3 to 8 middle dot-groups
// (5 to 10 groups total including the literal prefix and the version
// suffix). The industry group is uppercase alphanumeric, 3-15 characters;
// inner segments additionally allow underscores and span 2-30 characters.
const (
	Prefix = "HERA"

	minMiddleGroups = 3
	maxMiddleGroups = 8

	minIndustryLen = 3
	maxIndustryLen = 15
	minSegmentLen  = 2
	maxSegmentLen  = 30
)

// ParsedCode is the decomposed form of a valid smart code
type ParsedCode struct {
	Industry string   `json:"industry"`
	Segments []string `json:"segments"`
	Version  int      `json:"version"`
}

// String reassembles the canonical smart code
func (p ParsedCode) String() string {
	groups := make([]string, 0, len(p.Segments)+3)
	groups = append(groups, Prefix, p.Industry)
	groups = append(groups, p.Segments...)
	groups = append(groups, fmt.Sprintf("v%d", p.Version))
	return strings.Join(groups, ".")
}

// Validate reports whether code matches the smart-code grammar.
// It never touches storage and has no side effects.
func Validate(code string) bool {
	_, err := Parse(code)
	return err == nil
}

// Parse decomposes a smart code into industry, inner segments and version.
// Returns INVALID_SMART_CODE on any grammar violation.
func Parse(code string) (*ParsedCode, error) {
	groups := strings.Split(code, ".")
	if len(groups) < minMiddleGroups+2 || len(groups) > maxMiddleGroups+2 {
		return nil, invalid("expected %d-%d dot-groups, got %d", minMiddleGroups+2, maxMiddleGroups+2, len(groups))
	}

	if groups[0] != Prefix {
		return nil, invalid("missing %q prefix", Prefix)
	}

	version, err := parseVersion(groups[len(groups)-1])
	if err != nil {
		return nil, err
	}

	industry := groups[1]
	if len(industry) < minIndustryLen || len(industry) > maxIndustryLen {
		return nil, invalid("industry must be %d-%d characters", minIndustryLen, maxIndustryLen)
	}
	if !isUpperAlnum(industry) {
		return nil, invalid("industry %q must be uppercase alphanumeric", industry)
	}

	segments := groups[2 : len(groups)-1]
	for _, seg := range segments {
		if len(seg) < minSegmentLen || len(seg) > maxSegmentLen {
			return nil, invalid("segment %q must be %d-%d characters", seg, minSegmentLen, maxSegmentLen)
		}
		if !isUpperAlnumUnderscore(seg) {
			return nil, invalid("segment %q must be uppercase alphanumeric or underscore", seg)
		}
	}

	return &ParsedCode{
		Industry: industry,
		Segments: append([]string(nil), segments...),
		Version:  version,
	}, nil
}

func parseVersion(group string) (int, error) {
	if len(group) < 2 || group[0] != 'v' {
		return 0, invalid("missing version suffix")
	}
	version, err := strconv.Atoi(group[1:])
	if err != nil || version < 1 {
		return 0, invalid("version %q must be a positive integer", group)
	}
	return version, nil
}

func isUpperAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func isUpperAlnumUnderscore(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}

func invalid(format string, args ...interface{}) *shared.DomainError {
	return shared.NewValidationError(
		shared.ErrInvalidSmartCode.Code,
		fmt.Sprintf("Invalid smart code: "+format, args...),
	)
}
