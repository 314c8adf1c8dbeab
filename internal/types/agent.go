package types

import "time"

// AgentType identifies one of the four monitoring/decision agents.
type AgentType string

const (
	AgentTypeTicker   AgentType = "ticker"
	AgentTypeAnalysis AgentType = "analysis"
	AgentTypeNews     AgentType = "news"
	AgentTypeTrading  AgentType = "trading"
)

// AgentStatus is the lifecycle state of an agent.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "ACTIVE"
	AgentStatusInactive AgentStatus = "INACTIVE"
	AgentStatusError    AgentStatus = "ERROR"
)

// AgentState is the externally visible status of an agent, read by the
// orchestrator for status aggregation. Only the owning agent mutates it.
type AgentState struct {
	Name        string      `yaml:"name" json:"name"`
	Type        AgentType   `yaml:"type" json:"type"`
	Status      AgentStatus `yaml:"status" json:"status"`
	LastUpdated time.Time   `yaml:"last_updated" json:"lastUpdated"`
}
