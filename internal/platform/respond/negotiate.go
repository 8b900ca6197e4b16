package respond

import (
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/labstack/echo/v5"
)

// format is a negotiated body encoding.
type format int

const (
	formatJSON format = iota
	formatCBOR
)

func (f format) subtype() string {
	if f == formatCBOR {
		return "cbor"
	}
	return "json"
}

// mediaRange is one entry of an Accept header.
type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges (RFC 9110 12.5.1).
// Invalid q-values are ignored and a bare type is read as type/*.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		mediaType, params, _ := strings.Cut(part, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
		if mediaType == "" {
			continue
		}

		mr := mediaRange{q: 1}
		typ, sub, ok := strings.Cut(mediaType, "/")
		mr.typ = strings.TrimSpace(typ)
		mr.subtype = "*"
		if ok {
			mr.subtype = strings.TrimSpace(sub)
		}

		for param := range strings.SplitSeq(params, ";") {
			name, value, _ := strings.Cut(strings.TrimSpace(param), "=")
			if !strings.EqualFold(name, "q") {
				continue
			}
			if q, err := strconv.ParseFloat(value, 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity reports how precisely mr names f: 4 for the problem type,
// 3 for the type or a structured suffix, 2 for application/*, 1 for */*
// and 0 when it does not match.
func (mr mediaRange) specificity(f format) int {
	sub := f.subtype()
	switch {
	case mr.typ == "*" && mr.subtype == "*":
		return 1
	case mr.typ != "application":
		return 0
	case mr.subtype == "problem+"+sub:
		return 4
	case mr.subtype == sub, strings.HasSuffix(mr.subtype, "+"+sub):
		return 3
	case mr.subtype == "*":
		return 2
	}
	return 0
}

// preference returns the q-value of the most specific range accepting f,
// or -1 when none does. Ranges with q=0 are skipped.
func preference(ranges []mediaRange, f format) (q float64, specificity int) {
	q = -1
	for _, mr := range ranges {
		if mr.q == 0 {
			continue
		}
		s := mr.specificity(f)
		if s > specificity || (s > 0 && s == specificity && mr.q > q) {
			q, specificity = mr.q, s
		}
	}
	return q, specificity
}

// selectFormat picks CBOR only when the client ranks it above JSON, by
// q-value first and specificity second. Everything else gets JSON.
func selectFormat(header string) format {
	ranges := parseAccept(header)
	cq, cs := preference(ranges, formatCBOR)
	jq, js := preference(ranges, formatJSON)
	switch {
	case cq <= 0 && jq <= 0:
		return formatJSON
	case cq != jq:
		if cq > jq {
			return formatCBOR
		}
		return formatJSON
	case cs > js:
		return formatCBOR
	}
	return formatJSON
}

// Negotiate writes data as JSON or CBOR following the Accept header.
func Negotiate(c *echo.Context, status int, data any) error {
	if selectFormat(c.Request().Header.Get(echo.HeaderAccept)) == formatJSON {
		return c.JSON(status, data)
	}
	b, err := cbor.Marshal(data)
	if err != nil {
		return err
	}
	return c.Blob(status, "application/cbor", b)
}
