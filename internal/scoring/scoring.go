// Package scoring turns registration signals into a suspicion score and an
// ordered log of the rules that fired.
//
// Score is pure domain logic: no I/O, no clock, no side effects. Persisting
// the result (and timestamping each entry) is the caller's job.
package scoring

// Signals is the bundle collected once at registration. A false flag means
// "not observed", which includes "lookup unavailable".
type Signals struct {
	// Hosting reports the client IP is in a hosting/datacenter range.
	Hosting bool `json:"hosting"`
	// Proxy reports the client IP is a known proxy or VPN exit.
	Proxy bool `json:"proxy"`
	// AutomatedClient reports the User-Agent identifies a bot or script.
	AutomatedClient bool `json:"automated_client"`
}

// Rule is one entry of the static catalog.
type Rule struct {
	ID      string
	Points  int
	Reason  string
	Applies func(Signals) bool
}

// Entry records a rule that fired.
type Entry struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// Result is the score plus the entries that make it up, in catalog order.
type Result struct {
	Score int     `json:"score"`
	Log   []Entry `json:"log"`
}

const (
	RuleIPHosting       = "ip_hosting"
	RuleIPProxy         = "ip_proxy"
	RuleAutomatedClient = "automated_client"
)

// DefaultCatalog is evaluated in this order; the order is part of the contract.
var DefaultCatalog = []Rule{
	{
		ID:      RuleIPHosting,
		Points:  15,
		Reason:  "registration IP belongs to a hosting or datacenter range",
		Applies: func(s Signals) bool { return s.Hosting },
	},
	{
		ID:      RuleIPProxy,
		Points:  20,
		Reason:  "registration IP is a known proxy or VPN",
		Applies: func(s Signals) bool { return s.Proxy },
	},
	{
		ID:      RuleAutomatedClient,
		Points:  10,
		Reason:  "registration client identified as automated",
		Applies: func(s Signals) bool { return s.AutomatedClient },
	},
}

// Engine evaluates a rule catalog. The zero value is not usable; use NewEngine.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over rules, or over DefaultCatalog when none are given.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultCatalog
	}
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// Score evaluates every rule independently. A nil bundle is a valid
// zero-score case, never an error.
func (e *Engine) Score(signals *Signals) Result {
	result := Result{Log: []Entry{}}
	if signals == nil {
		return result
	}
	for _, rule := range e.rules {
		if rule.Applies == nil || !rule.Applies(*signals) {
			continue
		}
		result.Log = append(result.Log, Entry{RuleID: rule.ID, Reason: rule.Reason, Points: rule.Points})
		result.Score += rule.Points
	}
	return result
}
