// Package graph implements the two-level state machine that drives post
// generation: per-team graphs whose supervisor routes work between members,
// and a meta graph routing between the teams. Supervisor output parsing is
// tolerant of malformed model JSON.
package graph

import (
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/kaptinlin/jsonrepair"
)

// finishKeyword is the routing value that terminates a graph.
const finishKeyword = "FINISH"

// Route is a supervisor decision: either a member to run next or finish.
type Route struct {
	// Member is the selected node name, empty when the graph should finish.
	Member string
}

// Finish reports whether the route terminates the graph.
func (r Route) Finish() bool {
	return r.Member == ""
}

// Telemetry counts routing anomalies. Parse failures are operational
// signal only; they never surface in task state because the parser always
// produces a usable route.
type Telemetry struct {
	RouteParseFailures atomic.Int64
}

// routeDecision is the JSON shape supervisors are prompted to emit.
type routeDecision struct {
	Next string `json:"next"`
}

// ParseRoute interprets a supervisor reply. It tries JSON first (repairing
// sloppy payloads), then falls back to scanning the text for exactly one
// member name, case-insensitively. Ambiguous or unreadable replies default
// to finishing, counting a parse failure.
func ParseRoute(raw string, members []string, telemetry *Telemetry) Route {
	text := stripFences(raw)

	if next, ok := decodeNext(text); ok {
		if route, ok := matchChoice(next, members); ok {
			return route
		}
	}

	if route, ok := scanForChoice(text, members); ok {
		return route
	}

	if telemetry != nil {
		telemetry.RouteParseFailures.Add(1)
	}
	return Route{}
}

// decodeNext extracts the "next" field, repairing malformed JSON once.
func decodeNext(text string) (string, bool) {
	var decision routeDecision
	if err := json.Unmarshal([]byte(text), &decision); err == nil && decision.Next != "" {
		return decision.Next, true
	}

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return "", false
	}
	if err := json.Unmarshal([]byte(repaired), &decision); err != nil || decision.Next == "" {
		return "", false
	}
	return decision.Next, true
}

// matchChoice validates a decoded choice against the member list.
func matchChoice(choice string, members []string) (Route, bool) {
	choice = strings.TrimSpace(choice)
	if strings.EqualFold(choice, finishKeyword) {
		return Route{}, true
	}
	for _, member := range members {
		if strings.EqualFold(choice, member) {
			return Route{Member: member}, true
		}
	}
	return Route{}, false
}

// scanForChoice looks for exactly one member name in free text. FINISH wins
// only when no member is named; more than one member is ambiguous.
func scanForChoice(text string, members []string) (Route, bool) {
	lower := strings.ToLower(text)

	var found []string
	for _, member := range members {
		if strings.Contains(lower, strings.ToLower(member)) {
			found = append(found, member)
		}
	}
	switch len(found) {
	case 1:
		return Route{Member: found[0]}, true
	case 0:
		if strings.Contains(lower, strings.ToLower(finishKeyword)) {
			return Route{}, true
		}
	}
	return Route{}, false
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 && !strings.HasPrefix(text, "{") {
		// Drop a language tag like ```json.
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
