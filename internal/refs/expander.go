// Package refs expands archival reference strings containing comma
// separated parts and hyphenated numeric ranges into individual fully
// qualified references. Eg, GEO/ADD/32/12-13 becomes GEO/ADD/32/12 and
// GEO/ADD/32/13.
package refs

import (
	"strconv"
	"strings"
)

// Errors accumulates malformed range parts keyed by the offending string,
// mapped to the identifier of the record the reference came from. The
// expander never aborts on messy historical data; it records the problem
// and carries on with the remaining parts.
type Errors map[string]string

// Expand returns the individual references contained in ref, in order.
// recordID identifies the originating record in the returned errors.
func Expand(ref string, recordID string, errs Errors) []string {
	var expanded []string
	parts := strings.Split(ref, ",")
	// The first part forms the basis for all subsequent parts (including
	// itself, if it is a range; eg GEO/MAIN/25050-29643). Except when it
	// doesn't: GEO/ADD/32/2/2-46, GEO/ADD/32/1023-1024.
	base := ""
	for _, part := range parts {
		part = strings.TrimSpace(part)
		newBase := baseRef(part, base)
		if strings.Contains(part, "-") {
			// A range uses the new base (which may be the old base).
			expanded = append(expanded, rangeRefs(newBase, part, recordID, errs)...)
		} else if newBase == base {
			// No range: use the old base if it is the same as the new base,
			// or no base otherwise. This accounts for "GEO/ADD/32/2/2, 4"
			// and "GEO/ADD/32/2/2, GEO/ADD/32/3/1" respectively.
			expanded = append(expanded, base+part)
		} else {
			expanded = append(expanded, part)
		}
		base = newBase
	}
	return expanded
}

// baseRef returns the base from ref, suitable for prefixing partial refs.
// Eg, the base of GEO/MAIN/25050-29643 is GEO/MAIN/. A base is only ever
// inferred from path-style or RCIN-style refs; anything else inherits the
// old base.
func baseRef(ref, oldBase string) string {
	if strings.Contains(ref, "/") {
		head := strings.TrimSpace(strings.Split(ref, "-")[0])
		segments := strings.Split(head, "/")
		return strings.Join(segments[:len(segments)-1], "/") + "/"
	}
	if strings.HasPrefix(ref, "RCIN") {
		// Eg, RCIN 1028949 becomes "RCIN ".
		return strings.Split(ref, " ")[0] + " "
	}
	return oldBase
}

func rangeRefs(base, rangeRef, recordID string, errs Errors) []string {
	bounds := strings.Split(rangeRef, "-")
	if len(bounds) != 2 {
		errs[rangeRef] = recordID
		return nil
	}
	startPart := strings.TrimSpace(bounds[0])
	endPart := strings.TrimSpace(bounds[1])
	startPart = strings.TrimPrefix(startPart, base)
	start, err := strconv.Atoi(startPart)
	if err != nil {
		errs[rangeRef] = recordID
		return nil
	}
	end, err := strconv.Atoi(endPart)
	if err != nil {
		errs[rangeRef] = recordID
		return nil
	}
	expanded := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		expanded = append(expanded, base+strconv.Itoa(i))
	}
	return expanded
}

// StripZeros strips leading zeros from every /-separated part of ref.
func StripZeros(ref string) string {
	parts := strings.Split(ref, "/")
	for i, part := range parts {
		stripped := strings.TrimLeft(part, "0")
		if stripped == "" {
			stripped = "0"
		}
		parts[i] = stripped
	}
	return strings.Join(parts, "/")
}
