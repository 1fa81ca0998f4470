package execution

import "time"

type ActionStatus string

type StepStatus string

type StepType string

const (
	// ActionStatusPlanned actions had their prerequisites read on-chain.
	ActionStatusPlanned ActionStatus = "planned"
	// ActionStatusUnchecked actions were planned without RPC reads, so every
	// prerequisite step is included.
	ActionStatusUnchecked ActionStatus = "unchecked"
)

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusUnchecked StepStatus = "unchecked"
)

const (
	StepTypeApproval   StepType = "approval"
	StepTypeDelegation StepType = "delegation"
	StepTypeLoop       StepType = "loop"
)

// Constraints records the loop parameters an action was planned with.
type Constraints struct {
	NumLoops           uint16 `json:"num_loops"`
	TargetHealthFactor string `json:"target_health_factor"`
	MinAmountSupplied  string `json:"min_amount_supplied,omitempty"`
	Unwrap             bool   `json:"unwrap,omitempty"`
	SkipChecks         bool   `json:"skip_checks,omitempty"`
}

type ActionStep struct {
	StepID      string            `json:"step_id"`
	Type        StepType          `json:"type"`
	Status      StepStatus        `json:"status"`
	ChainID     string            `json:"chain_id"`
	RPCURL      string            `json:"rpc_url,omitempty"`
	Description string            `json:"description,omitempty"`
	From        string            `json:"from"`
	Target      string            `json:"target"`
	Data        string            `json:"data"`
	Value       string            `json:"value,omitempty"`
	GasLimit    string            `json:"gas_limit"`
	Checks      map[string]string `json:"checks,omitempty"`
}

type Action struct {
	ActionID    string         `json:"action_id"`
	Mode        string         `json:"mode"`
	Status      ActionStatus   `json:"status"`
	ChainID     string         `json:"chain_id"`
	Deployment  string         `json:"deployment"`
	FromAddress string         `json:"from_address"`
	Route       string         `json:"route,omitempty"`
	InputAmount string         `json:"input_amount"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Constraints Constraints    `json:"constraints"`
	Steps       []ActionStep   `json:"steps"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewAction(actionID, mode, chainID string, constraints Constraints) Action {
	now := time.Now().UTC().Format(time.RFC3339)
	status := ActionStatusPlanned
	if constraints.SkipChecks {
		status = ActionStatusUnchecked
	}
	return Action{
		ActionID:    actionID,
		Mode:        mode,
		Status:      status,
		ChainID:     chainID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Constraints: constraints,
		Steps:       []ActionStep{},
	}
}

func (a *Action) Touch() {
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// LoopStep returns the final loop call, if the action has one.
func (a Action) LoopStep() (ActionStep, bool) {
	for i := len(a.Steps) - 1; i >= 0; i-- {
		if a.Steps[i].Type == StepTypeLoop {
			return a.Steps[i], true
		}
	}
	return ActionStep{}, false
}
