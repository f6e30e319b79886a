// This file implements utilities for parsing request data into tracker
// inputs. Bodies may be JSON or form-encoded.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
	"tracker/internal/input"
)

// maxBodyBytes bounds request bodies; a transaction is a handful of fields.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once and keeps it for parsing. A body
// over maxBodyBytes is a parse error.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("reading body: %w", p.err)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' {
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns a trimmed, sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// ParseRaw reads a transaction form from the request body. JSON amounts may
// be numbers or strings; numbers are written out in plain decimal form.
func ParseRaw(w http.ResponseWriter, r *http.Request) (input.Raw, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return input.Raw{}, err
	}
	return input.Raw{
		Name:     p.Get("name"),
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Type:     p.Get("type"),
	}, nil
}

// ParsePeriodParam returns the period in query, or fallback when absent.
func ParsePeriodParam(query url.Values, fallback core.Period) (core.Period, error) {
	if !query.Has("period") {
		return fallback, nil
	}
	return core.ParsePeriod(query.Get("period"))
}

// ParseID reads a transaction id path segment.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return plainNumber(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// maxExponent keeps plainNumber from expanding something like 1e999999999.
const maxExponent = 32

// plainNumber rewrites a JSON number such as 1e3 as 1000. Numbers that do
// not parse or have an outsized exponent are returned as written.
func plainNumber(n json.Number) string {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return n.String()
	}
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return n.String()
	}
	return d.String()
}
