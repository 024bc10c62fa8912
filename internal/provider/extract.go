package provider

import (
	"strconv"
	"strings"
)

// StatEntry is one labeled metric from an upstream statistics payload.
// The list is unordered and Value is loosely typed: int, float, a
// percentage string like "63%", or null.
type StatEntry struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// StatValue is a nullable numeric stat. Valid is false when the metric is
// absent or not extractable, a normal condition pre-match rather than an error.
type StatValue struct {
	Value float64
	Valid bool
}

// Stat builds a present StatValue.
func Stat(v float64) StatValue {
	return StatValue{Value: v, Valid: true}
}

// Int returns the value rounded down to an integer. Zero when not Valid.
func (v StatValue) Int() int {
	if !v.Valid {
		return 0
	}
	return int(v.Value)
}

// ExtractStat pulls the named metric out of an unordered entry list.
//
// Percentage strings ("63%") are stripped and parsed as integers. Plain
// numbers pass through. A missing entry, null value, or unparseable string
// yields the unavailable marker, never an error.
func ExtractStat(entries []StatEntry, statType string) StatValue {
	for _, e := range entries {
		if e.Type != statType {
			continue
		}
		return normalizeStat(e.Value)
	}
	return StatValue{}
}

// normalizeStat converts a loosely typed stat value to a StatValue.
func normalizeStat(val interface{}) StatValue {
	switch v := val.(type) {
	case nil:
		return StatValue{}
	case float64:
		return Stat(v)
	case int:
		return Stat(float64(v))
	case int64:
		return Stat(float64(v))
	case string:
		if strings.HasSuffix(v, "%") {
			if n, err := strconv.Atoi(strings.TrimSuffix(v, "%")); err == nil {
				return Stat(float64(n))
			}
			return StatValue{}
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return Stat(f)
		}
		return StatValue{}
	default:
		return StatValue{}
	}
}
