// Package api contains the HTTP contract of the chart service.
// Version v1 represents the current stable API version.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Angle keys that follow the ten bodies in a chart result
const (
	KeyAscendant = "ASC"
	KeyMidheaven = "MC"
)

// ChartRequest is the body of POST /astro.
//
// Longitude and Latitude may also be sent as numeric strings; the server
// reads the body field by field, so this type is mainly for clients.
type ChartRequest struct {
	Datetime  string  `json:"datetime" validate:"required,len=16,datetime=2006-01-02 15:04"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// BodyLongitude is one entry of a chart result
type BodyLongitude struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
}

// ChartResult holds the rounded ecliptic longitudes of the ten bodies in
// their fixed order, followed by the Ascendant and Midheaven.
//
// It encodes as a flat JSON object whose key order matches Bodies, then
// ASC, then MC.
type ChartResult struct {
	Bodies []BodyLongitude
	ASC    float64
	MC     float64
}

// Keys returns the result keys in encoding order
func (c *ChartResult) Keys() []string {
	keys := make([]string, 0, len(c.Bodies)+2)
	for _, b := range c.Bodies {
		keys = append(keys, b.Name)
	}
	return append(keys, KeyAscendant, KeyMidheaven)
}

// MarshalJSON implements json.Marshaler with a stable key order
func (c ChartResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("chart value %s is not finite", key)
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		return nil
	}
	for i, b := range c.Bodies {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := write(b.Name, b.Longitude); err != nil {
			return nil, err
		}
	}
	if len(c.Bodies) > 0 {
		buf.WriteByte(',')
	}
	if err := write(KeyAscendant, c.ASC); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := write(KeyMidheaven, c.MC); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the body order found in
// the document.
func (c *ChartResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("chart result must be a JSON object")
	}

	res := ChartResult{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		switch key {
		case KeyAscendant:
			res.ASC = v
		case KeyMidheaven:
			res.MC = v
		default:
			res.Bodies = append(res.Bodies, BodyLongitude{Name: key, Longitude: v})
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = res
	return nil
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
