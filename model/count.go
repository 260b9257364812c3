package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count is a non-negative integer that decodes leniently. Older data files contain null,
// numeric strings and NaN in counter fields; anything that is not a usable number decodes
// as zero instead of failing the whole document.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	if f >= math.MaxInt64 {
		*c = Count(math.MaxInt64)
		return nil
	}
	*c = Count(math.Floor(f))
	return nil
}

// Int returns the count as an int.
func (c Count) Int() int {
	return int(c)
}
