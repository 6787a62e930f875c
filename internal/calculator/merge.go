// Package calculator combines partial per-agent and per-map aggregates.
//
// Aggregates carry summed counters only, so a merge is a counter sum and
// every per-game average of the result is the games-weighted average of the
// inputs. Merging is associative and commutative.
package calculator

import "valorant-analytics/internal/domain"

// MergeAgent combines two aggregates of the same agent.
// Aggregates of different agents are not merged; a is returned unchanged.
func MergeAgent(a, b domain.AgentPerformance) domain.AgentPerformance {
	if a.AgentName != b.AgentName {
		return a
	}
	return domain.AgentPerformance{
		AgentName: a.AgentName,
		Counters:  a.Counters.Plus(b.Counters),
	}
}

// MergeMap combines two aggregates of the same map.
// Aggregates of different maps are not merged; a is returned unchanged.
func MergeMap(a, b domain.MapPerformance) domain.MapPerformance {
	if a.MapName != b.MapName {
		return a
	}
	return domain.MapPerformance{
		MapName:  a.MapName,
		Counters: a.Counters.Plus(b.Counters),
	}
}
