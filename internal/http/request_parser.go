// Package http serves the ledger as a JSON API.
//
// This file holds request parsing: bodies that may arrive as JSON or as
// form data, and the query strings the list and stats endpoints accept.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks malformed input that never reached validation.
var errBadRequest = errors.New("bad request")

// RequestBodyParser reads a request body once and serves fields from it
// whether it was JSON or form-encoded.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most 1 MiB of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object and as a
// form otherwise. Numbers in JSON keep their exact decimal text.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequest, p.err)
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: invalid form: %v", errBadRequest, p.err)
	}
	return p.err
}

// Get returns a trimmed string value from the parsed data.
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

// First returns the first non-empty value among keys.
func (p *RequestBodyParser) First(keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether key was sent at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// Amount reads a positive money amount. JSON numbers are taken as is; text
// goes through the locale-aware parser so "Rp 25.000" works.
func (p *RequestBodyParser) Amount(keys ...string) (decimal.Decimal, error) {
	for _, k := range keys {
		if n, ok := p.jsonNumber(k); ok {
			d, err := decimal.NewFromString(n.String())
			if err != nil || !d.IsPositive() {
				return decimal.Zero, fmt.Errorf("%w: %s", core.ErrInvalidAmount, k)
			}
			return d, nil
		}
	}
	return core.ParseAmount(p.First(keys...))
}

// SignedAmount reads an amount that may be zero or negative, such as a
// target wallet balance.
func (p *RequestBodyParser) SignedAmount(key string) (decimal.Decimal, error) {
	if n, ok := p.jsonNumber(key); ok {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s", core.ErrInvalidAmount, key)
		}
		return d, nil
	}
	return core.ParseSignedAmount(p.Get(key))
}

func (p *RequestBodyParser) jsonNumber(key string) (json.Number, bool) {
	if p.jsonData == nil {
		return "", false
	}
	n, ok := p.jsonData[key].(json.Number)
	return n, ok
}

// Date reads a YYYY-MM-DD field. An absent or empty field yields fallback.
func (p *RequestBodyParser) Date(key string, fallback core.Date) (core.Date, error) {
	v := p.Get(key)
	if v == "" {
		return fallback, nil
	}
	return core.ParseDate(v)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseCriteria builds list filters from a query string. The advanced path
// is on when advanced=true; its bounds and sets are ignored otherwise.
// Unparseable bounds are dropped rather than rejected.
func ParseCriteria(q url.Values) ledger.Criteria {
	c := ledger.Criteria{
		Search: q.Get("q"),
		Type:   q.Get("type"),
		Wallet: q.Get("wallet"),
		Day:    q.Get("day"),
		Month:  q.Get("month"),
		Year:   q.Get("year"),
	}

	active, _ := strconv.ParseBool(q.Get("advanced"))
	c.Advanced = ledger.AdvancedCriteria{
		Active:     active,
		Categories: splitList(q["categories"]),
		Wallets:    splitList(q["wallets"]),
		SortBy:     ledger.SortPolicy(strings.ToLower(strings.TrimSpace(q.Get("sort")))),
	}
	if d, err := core.ParseDate(strings.TrimSpace(q.Get("start"))); err == nil {
		c.Advanced.StartDate = d
	}
	if d, err := core.ParseDate(strings.TrimSpace(q.Get("end"))); err == nil {
		c.Advanced.EndDate = d
	}
	c.Advanced.MinAmount = parseBound(q.Get("min"))
	c.Advanced.MaxAmount = parseBound(q.Get("max"))
	return c.Normalize()
}

func parseBound(s string) decimal.NullDecimal {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}
	}
	d, err := core.ParseSignedAmount(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseVisible reads how many list entries to show. A missing or invalid
// value shows one page; 0 or less shows everything.
func ParseVisible(q url.Values, pageSize int) int {
	v := strings.TrimSpace(q.Get("visible"))
	if v == "" {
		return pageSize
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return pageSize
	}
	return n
}

// queryInt reads an integer parameter with a default.
func queryInt(q url.Values, key string, fallback int) int {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// queryDate reads a YYYY-MM-DD parameter with a default.
func queryDate(q url.Values, key string, fallback core.Date) (core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return fallback, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s", core.ErrInvalidDate, key)
	}
	return d, nil
}

// queryType reads a transaction type parameter with a default.
func queryType(q url.Values, fallback core.TransactionType) (core.TransactionType, error) {
	v := core.TransactionType(strings.ToLower(strings.TrimSpace(q.Get("type"))))
	if v == "" {
		return fallback, nil
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidType, v)
	}
	return v, nil
}
