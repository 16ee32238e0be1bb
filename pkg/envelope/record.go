package envelope

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record is the classified shape of a failure: an application code, a
// transport status, and whatever message travelled with it. Any part may be
// missing.
type Record struct {
	Code    string
	Status  int
	Message string

	// Raw preserves the original value for the final fallback of the message
	// precedence chain.
	Raw any
}

// Catalog resolves human-readable messages for failure records. Lookups are
// keyed by application code first, then transport status.
type Catalog struct {
	ByCode   map[string]string
	ByStatus map[int]string
}

// Resolve returns the display message for a record following the precedence
// chain: code-keyed lookup, status-keyed lookup, the original message, the
// code, the status, and finally the raw value.
func (c Catalog) Resolve(r Record) string {
	if r.Code != "" {
		if msg, ok := c.ByCode[r.Code]; ok && msg != "" {
			return msg
		}
	}
	if r.Status != 0 {
		if msg, ok := c.ByStatus[r.Status]; ok && msg != "" {
			return msg
		}
	}
	if strings.TrimSpace(r.Message) != "" {
		return r.Message
	}
	if r.Code != "" {
		return r.Code
	}
	if r.Status != 0 {
		return strconv.Itoa(r.Status)
	}
	if r.Raw != nil {
		return fmt.Sprint(r.Raw)
	}
	return ""
}

// Classify builds a Record from an arbitrary rejection value: a *Rejected
// response, a loose map carrying code/status/message keys, or a plain error.
func Classify(err error) Record {
	if err == nil {
		return Record{}
	}

	var rejected *Rejected
	if errors.As(err, &rejected) {
		rec := FromMap(rejected.Raw)
		rec.Raw = rejected.Raw
		return rec
	}

	return Record{Message: err.Error(), Raw: err}
}

// FromMap extracts record parts from a loose decoded payload.
func FromMap(raw map[string]any) Record {
	rec := Record{Raw: raw}
	if raw == nil {
		return rec
	}
	switch code := raw["code"].(type) {
	case string:
		rec.Code = code
	case float64:
		rec.Code = strconv.Itoa(int(code))
	case int:
		rec.Code = strconv.Itoa(code)
	}
	if status := numeric(raw["status"]); status != 0 {
		rec.Status = int(status)
	}
	switch msg := raw["message"].(type) {
	case string:
		rec.Message = msg
	}
	return rec
}
