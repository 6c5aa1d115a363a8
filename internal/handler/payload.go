package handler

import (
    "bytes"
    "encoding/json"
    "io"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/studentplanner/planner/internal/response"
)

// Payload is a decoded JSON object body.  Keeping the raw values lets
// partial updates tell an absent key from an explicit null.
type Payload map[string]json.RawMessage

// bindPayload decodes the request body.  An empty body is an empty payload.
func bindPayload(c echo.Context) (Payload, error) {
    body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
    if err != nil {
        return nil, response.Invalid("Invalid request body")
    }
    p := Payload{}
    if len(bytes.TrimSpace(body)) == 0 {
        return p, nil
    }
    if err := json.Unmarshal(body, &p); err != nil {
        return nil, response.Invalid("Invalid JSON body")
    }
    return p, nil
}

// Has reports whether key was sent, even as null.
func (p Payload) Has(key string) bool {
    _, ok := p[key]
    return ok
}

// IsNull reports whether key was sent as an explicit null.
func (p Payload) IsNull(key string) bool {
    v, ok := p[key]
    return ok && string(bytes.TrimSpace(v)) == "null"
}

// String returns the trimmed string value of key.  Numbers are accepted in
// their literal form; anything else yields "".
func (p Payload) String(key string) string {
    v, ok := p[key]
    if !ok {
        return ""
    }
    var s string
    if err := json.Unmarshal(v, &s); err == nil {
        return strings.TrimSpace(s)
    }
    var n json.Number
    if err := json.Unmarshal(v, &n); err == nil {
        return n.String()
    }
    return ""
}

// NullableString returns nil for null or blank values, else the trimmed
// string.
func (p Payload) NullableString(key string) *string {
    if p.IsNull(key) {
        return nil
    }
    s := p.String(key)
    if s == "" {
        return nil
    }
    return &s
}

// Bool reads key loosely: JSON booleans, non-zero numbers and the strings
// "1", "true", "on", "yes" count as true.
func (p Payload) Bool(key string) bool {
    v, ok := p[key]
    if !ok {
        return false
    }
    var b bool
    if err := json.Unmarshal(v, &b); err == nil {
        return b
    }
    var n float64
    if err := json.Unmarshal(v, &n); err == nil {
        return n != 0
    }
    switch strings.ToLower(p.String(key)) {
    case "1", "true", "on", "yes":
        return true
    }
    return false
}

// Int reads key as an integer.  ok is false when the value is missing or
// not a number.
func (p Payload) Int(key string) (n int, ok bool) {
    v, present := p[key]
    if !present {
        return 0, false
    }
    var f float64
    if err := json.Unmarshal(v, &f); err == nil {
        return int(f), true
    }
    if i, err := strconv.Atoi(p.String(key)); err == nil {
        return i, true
    }
    return 0, false
}

// Text returns the string value of key exactly as sent.  Passwords go
// through it so surrounding spaces stay significant.
func (p Payload) Text(key string) string {
    v, ok := p[key]
    if !ok {
        return ""
    }
    var s string
    if err := json.Unmarshal(v, &s); err != nil {
        return ""
    }
    return s
}
