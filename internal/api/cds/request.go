package cds

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ResponseKind declares how a response body is shaped back to the caller.
type ResponseKind int

const (
	// ResponseJSON bodies are decoded into a domain value.
	ResponseJSON ResponseKind = iota
	// ResponseText bodies are returned verbatim, never parsed.
	ResponseText
	// ResponseSuccess bodies are discarded; any 2xx means success.
	ResponseSuccess
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseJSON:
		return "json"
	case ResponseText:
		return "text"
	case ResponseSuccess:
		return "success"
	default:
		return fmt.Sprintf("ResponseKind(%d)", int(k))
	}
}

const (
	contentTypeJSON = "application/json"
	contentTypeYAML = "application/x-yaml"

	formatYAML = "yaml"
)

// Request describes one outbound call: everything needed to send it and how
// to shape its answer. Builders never perform I/O.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Header   http.Header
	Body     []byte
	Response ResponseKind
}

// URL joins the request path and query onto baseURL.
func (r *Request) URL(baseURL string) string {
	u := baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

func newRequest(method, path string, kind ResponseKind) *Request {
	return &Request{
		Method:   method,
		Path:     path,
		Query:    url.Values{},
		Header:   http.Header{},
		Response: kind,
	}
}

func (r *Request) withJSON(v any) (*Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	r.Body = body
	r.Header.Set("Content-Type", contentTypeJSON)
	return r, nil
}

// withYAMLSource tags the request as carrying the textual pipeline format.
// The backend accepts several formats on the same address, so the format is
// named both in the header and in the query.
func (r *Request) withYAMLSource(code string) *Request {
	r.Body = []byte(code)
	r.Header.Set("Content-Type", contentTypeYAML)
	r.Query.Set("format", formatYAML)
	return r
}

// asTextExport asks for the literal textual definition with permissions inline.
func (r *Request) asTextExport() *Request {
	r.Query.Set("format", formatYAML)
	r.Query.Set("withPermissions", "true")
	r.Response = ResponseText
	return r
}
