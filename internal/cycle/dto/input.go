package dto

type StartCycleInput struct {
	CompanyID string `validate:"required"`
}

type CycleRef struct {
	CompanyID string `validate:"required"`
	CycleID   string `validate:"required"`
}

type SectorRef struct {
	CompanyID string `validate:"required"`
	CycleID   string `validate:"required"`
	SectorID  string `validate:"required"`
}

// AssignCountersInput leaves the counters unchecked here: a missing or
// duplicated counter is an INVALID_ASSIGNMENT, not malformed input.
type AssignCountersInput struct {
	SectorRef
	CounterA string `validate:"max=128"`
	CounterB string `validate:"max=128"`
}

type SubmitCountInput struct {
	SectorRef
	ProductID  string `validate:"required"`
	CounterID  string `validate:"required"`
	Expression string `validate:"max=512"`
}

type FinalizeInput struct {
	SectorRef
	CounterID string `validate:"required"`
}

type PeerTallyInput struct {
	SectorRef
	ProductID string `validate:"required"`
	CounterID string `validate:"required"`
}

type ResolveInput struct {
	SectorRef
	ResolvedBy  string            `validate:"required"`
	Resolutions map[string]string `validate:"dive,keys,required,endkeys,max=512"`
}
