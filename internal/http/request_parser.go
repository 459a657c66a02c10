// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Form bodies and JSON bodies (htmx json-enc) are read the same way.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"comptes/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
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

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a trimmed, sanitized value from the parsed data (JSON or form).
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

// IsJSONContent reports whether the request declared a JSON body.
func (p *RequestBodyParser) IsJSONContent() bool {
	return strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseAccountDraft reads the account creation form. The type falls back
// to COURANT; every other field is kept as typed so it can be shown again.
func ParseAccountDraft(p *RequestBodyParser) (core.AccountDraft, error) {
	draft := core.AccountDraft{
		Balance:      p.Get("balance"),
		CreationDate: p.Get("creationDate"),
	}
	t, err := core.ParseAccountType(p.Get("type"), core.Current)
	draft.Type = t
	return draft, err
}

// ParseTransactionDraft reads the transaction form; kind defaults to DEPOT.
func ParseTransactionDraft(p *RequestBodyParser) (core.TransactionDraft, error) {
	draft := core.TransactionDraft{
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
	}
	kind, err := core.ParseTransactionKind(p.Get("kind"))
	draft.Kind = kind
	return draft, err
}

// ParseAccountID reads the {id} path segment.
func ParseAccountID(r *http.Request) (core.AccountID, error) {
	id := core.AccountID(strings.TrimSpace(r.PathValue("id")))
	if id.IsEmpty() {
		return "", core.ErrEmptyAccountID
	}
	return id, nil
}

// ParseFilterType reads the requested filter from the body or the query string.
func ParseFilterType(r *http.Request, p *RequestBodyParser) (core.AccountType, error) {
	raw := ""
	if p != nil {
		raw = p.Get("type")
	}
	if raw == "" {
		raw = sanitizeInput(r.URL.Query().Get("type"))
	}
	if raw == "" {
		return "", core.ErrInvalidAccountType
	}
	return core.ParseAccountType(raw, "")
}
