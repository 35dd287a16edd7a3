package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that also accepts a quoted numeric string, since
// browser form clients send numbers either way.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		return n.set(v)
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return n.set(v)
}

func (n *Number) set(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("number must be finite")
	}
	*n = Number(v)
	return nil
}
