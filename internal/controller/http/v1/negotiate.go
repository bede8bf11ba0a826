package v1

import (
	"mime"
	"strconv"
	"strings"
)

// wantsJSON decides the response representation from an Accept header:
// the JSON summary is emitted only when application/json is acceptable
// and ranked strictly above application/pdf. An absent header, a bare
// wildcard, or an explicit PDF preference all yield the PDF body.
func wantsJSON(accept string) bool {
	clauses := parseAccept(accept)
	if len(clauses) == 0 {
		return false
	}

	jsonQ := qualityFor(clauses, "application", "json")
	if jsonQ <= 0 {
		return false
	}

	return jsonQ > qualityFor(clauses, "application", "pdf")
}

type acceptClause struct {
	typ     string
	subtype string
	quality float64
}

func parseAccept(header string) []acceptClause {
	var clauses []acceptClause

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		mediaType, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}

		typ, subtype, found := strings.Cut(mediaType, "/")
		if !found {
			continue
		}

		quality := 1.0
		if raw, ok := params["q"]; ok {
			if q, err := strconv.ParseFloat(raw, 64); err == nil {
				quality = q
			}
		}

		clauses = append(clauses, acceptClause{typ: typ, subtype: subtype, quality: quality})
	}

	return clauses
}

// qualityFor returns the quality of the most specific clause matching
// typ/subtype: exact beats type wildcard beats full wildcard.
func qualityFor(clauses []acceptClause, typ, subtype string) float64 {
	bestSpecificity := -1
	quality := 0.0

	for _, clause := range clauses {
		var specificity int
		switch {
		case clause.typ == typ && clause.subtype == subtype:
			specificity = 2
		case clause.typ == typ && clause.subtype == "*":
			specificity = 1
		case clause.typ == "*" && clause.subtype == "*":
			specificity = 0
		default:
			continue
		}

		if specificity > bestSpecificity {
			bestSpecificity = specificity
			quality = clause.quality
		}
	}

	return quality
}
