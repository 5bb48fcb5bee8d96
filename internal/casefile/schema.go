package casefile

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block of a case file.
type fileRoot struct {
	Cases     []*caseBlock     `hcl:"case,block"`
	Recorders []*recorderBlock `hcl:"recorder,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type caseBlock struct {
	Name        string         `hcl:"name,label"`
	Model       string         `hcl:"model"`
	Description string         `hcl:"description,optional"`
	Set         hcl.Expression `hcl:"set,optional"`
	Record      []string       `hcl:"record,optional"`
	Solvers     []*solverBlock `hcl:"solver,block"`
	Sweeps      []*sweepBlock  `hcl:"sweep,block"`
}

type solverBlock struct {
	Group   string       `hcl:"group,label"`
	Kind    string       `hcl:"kind"`
	Atol    float64      `hcl:"atol,optional"`
	Rtol    float64      `hcl:"rtol,optional"`
	MaxIter int          `hcl:"maxiter,optional"`
	Timeout string       `hcl:"timeout,optional"`
	Relax   float64      `hcl:"relax,optional"`
	Linear  *linearBlock `hcl:"linear,block"`
}

type linearBlock struct {
	Kind    string  `hcl:"kind"`
	Atol    float64 `hcl:"atol,optional"`
	Rtol    float64 `hcl:"rtol,optional"`
	MaxIter int     `hcl:"maxiter,optional"`
	Restart int     `hcl:"restart,optional"`
}

type sweepBlock struct {
	Path   string         `hcl:"path,label"`
	From   hcl.Expression `hcl:"from,optional"`
	To     hcl.Expression `hcl:"to,optional"`
	Steps  int            `hcl:"steps,optional"`
	Values hcl.Expression `hcl:"values,optional"`
}

type recorderBlock struct {
	Kind      string `hcl:"kind,label"`
	URL       string `hcl:"url,optional"`
	Namespace string `hcl:"namespace,optional"`
	Event     string `hcl:"event,optional"`
	Timeout   string `hcl:"timeout,optional"`
}
