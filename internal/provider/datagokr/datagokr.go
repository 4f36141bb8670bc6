// Package datagokr decodes the response envelope shared by the services on
// apis.data.go.kr (KMA, AirKorea, MOLIT).
//
//	{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},
//	             "body":{"items":{"item":[...]},"totalCount":3}}}
//
// Some services return a single item as an object instead of a one-element
// array, and AirKorea puts the rows directly in "items" as an array. An
// "items" of "" or an object without "item" carries no rows and is treated
// as a malformed reply.
package datagokr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mobileid/portal/internal/feed"
)

// ResultOK is the header result code of a successful call.
const ResultOK = "00"

// ResultError is a non-success header from the service.
type ResultError struct {
	Code    string
	Message string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("data.go.kr result %s: %s", e.Code, e.Message)
}

type envelope struct {
	Response *struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body *struct {
			Items      json.RawMessage `json:"items"`
			TotalCount int             `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// Items extracts response.body.items.item (or response.body.items when it is
// an array) as raw rows, in upstream order.
// A missing response, body, items or item wraps feed.ErrUnexpectedShape. A
// header with a result code other than "00" is returned as *ResultError.
func Items(data []byte) ([]json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding data.go.kr response: %w", err)
	}
	if env.Response == nil {
		return nil, fmt.Errorf("no response object: %w", feed.ErrUnexpectedShape)
	}

	h := env.Response.Header
	if h.ResultCode != "" && h.ResultCode != ResultOK {
		return nil, &ResultError{Code: h.ResultCode, Message: h.ResultMsg}
	}

	if env.Response.Body == nil || isAbsent(env.Response.Body.Items) {
		return nil, fmt.Errorf("no response.body.items: %w", feed.ErrUnexpectedShape)
	}

	items := bytes.TrimSpace(env.Response.Body.Items)
	if bytes.Equal(items, []byte(`""`)) {
		return nil, fmt.Errorf("empty response.body.items: %w", feed.ErrUnexpectedShape)
	}
	if items[0] == '[' {
		return rows(items)
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(items, &wrapper); err != nil {
		return nil, fmt.Errorf("decoding items: %w", feed.ErrUnexpectedShape)
	}
	if isAbsent(wrapper.Item) {
		return nil, fmt.Errorf("no response.body.items.item: %w", feed.ErrUnexpectedShape)
	}

	return rows(wrapper.Item)
}

// rows accepts either an array of objects or a single object.
func rows(item json.RawMessage) ([]json.RawMessage, error) {
	item = bytes.TrimSpace(item)
	switch item[0] {
	case '[':
		var out []json.RawMessage
		if err := json.Unmarshal(item, &out); err != nil {
			return nil, fmt.Errorf("decoding item array: %w", err)
		}
		return out, nil
	case '{':
		return []json.RawMessage{item}, nil
	default:
		return nil, fmt.Errorf("item is neither object nor array: %w", feed.ErrUnexpectedShape)
	}
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// URL builds a request URL. The service key is appended verbatim because
// the portal hands out keys that are already percent-encoded.
func URL(base, path, serviceKey string, params url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	u += "?serviceKey=" + serviceKey
	if q := params.Encode(); q != "" {
		u += "&" + q
	}
	return u
}
