package models

import (
	"encoding/json"
	"strconv"
)

// RiskReport is the prediction object returned by the URL risk endpoint. It is
// passed through untouched; the accessors only help presentation.
type RiskReport map[string]any

// Score returns the SCORE field (higher means more dangerous).
func (r RiskReport) Score() (float64, bool) {
	switch v := r["SCORE"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// RiskLevel returns RISK_LEVEL (SAFE, LOW, MEDIUM, HIGH, CRITICAL) when present.
func (r RiskReport) RiskLevel() string {
	if s, ok := r["RISK_LEVEL"].(string); ok {
		return s
	}
	return ""
}

// Band maps the score onto the labels shown next to it.
func (r RiskReport) Band() string {
	score, ok := r.Score()
	if !ok {
		return ""
	}
	switch {
	case score >= 80:
		return "Critical"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low / Safe"
	}
}
