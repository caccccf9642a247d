package ai

import (
	"math"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	fenceRe  = regexp.MustCompile("```(?:json)?")
	arrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

const (
	defaultCategory = "General"
	defaultTitle    = "Health Insight"
	defaultContent  = "No details provided."
	defaultScore    = 50
)

func cleanResponse(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// extractJSON finds the outermost JSON array or object in free text.
func extractJSON(text string, re *regexp.Regexp) (gjson.Result, bool) {
	raw := re.FindString(cleanResponse(text))
	if raw == "" || !gjson.Valid(raw) {
		return gjson.Result{}, false
	}
	return gjson.Parse(raw), true
}

func extractArray(text string) (gjson.Result, bool) {
	r, ok := extractJSON(text, arrayRe)
	if !ok || !r.IsArray() {
		return gjson.Result{}, false
	}
	return r, true
}

func extractObject(text string) (gjson.Result, bool) {
	r, ok := extractJSON(text, objectRe)
	if !ok || !r.IsObject() {
		return gjson.Result{}, false
	}
	return r, true
}

// stringField returns the first non-empty value among keys, or def.
func stringField(r gjson.Result, def string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r.Get(k).String()); v != "" {
			return v
		}
	}
	return def
}

func numberField(r gjson.Result, keys ...string) float64 {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v.Float()
		}
	}
	return 0
}

func scoreField(r gjson.Result) int {
	v := r.Get("score")
	if !v.Exists() {
		return defaultScore
	}
	return clampScore(int(math.Round(math.Max(0, math.Min(100, v.Float())))))
}

func clampScore(s int) int {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}

func stringList(r gjson.Result) []string {
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
