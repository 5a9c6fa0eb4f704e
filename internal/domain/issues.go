package domain

// IssueSet holds the boolean issue flags attached to a line item. The same
// shape is used for customer-claimed issues at quote time and for the
// verified issues recorded after physical inspection.
type IssueSet struct {
	IsFinanced      bool `json:"is_financed"`
	NoPower         bool `json:"no_power"`
	FunctionalIssue bool `json:"functional_issue"`
	CrackedGlass    bool `json:"cracked_glass"`
	ActivationLock  bool `json:"activation_lock"`
}

// Any reports whether at least one issue flag is set.
func (s IssueSet) Any() bool {
	return s.IsFinanced || s.NoPower || s.FunctionalIssue || s.CrackedGlass || s.ActivationLock
}
