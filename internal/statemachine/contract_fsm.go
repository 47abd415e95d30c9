package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-rentals/internal/models"
)

// Contract events
const (
	EventExpire    = "expire"
	EventTerminate = "terminate"
)

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	running := []string{string(models.ContractStatusActive), string(models.ContractStatusExpiringSoon)}

	cfsm.fsm = fsm.NewFSM(
		string(contract.Status),
		fsm.Events{
			// active/expiring_soon → expired (expiry date passed)
			{Name: EventExpire, Src: running, Dst: string(models.ContractStatusExpired)},

			// active/expiring_soon → terminated (ended early)
			{Name: EventTerminate, Src: running, Dst: string(models.ContractStatusTerminated)},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Expire transitions the contract to expired once its expiry date has passed
func (c *ContractFSM) Expire(ctx context.Context, today time.Time) error {
	if !c.contract.MayExpire(today) {
		return fmt.Errorf("%w: contract %d cannot expire in state %s", ErrTransitionNotAllowed, c.contract.ID, c.contract.Status)
	}

	if err := c.fsm.Event(ctx, EventExpire); err != nil {
		return fmt.Errorf("failed to expire contract: %w", err)
	}

	c.contract.Status = models.ContractStatus(c.fsm.Current())
	return nil
}

// Terminate ends the contract early
func (c *ContractFSM) Terminate(ctx context.Context, at time.Time) error {
	if !c.contract.MayTerminate() {
		return fmt.Errorf("%w: contract %d cannot be terminated in state %s", ErrTransitionNotAllowed, c.contract.ID, c.contract.Status)
	}

	if err := c.fsm.Event(ctx, EventTerminate); err != nil {
		return fmt.Errorf("failed to terminate contract: %w", err)
	}

	c.contract.Status = models.ContractStatus(c.fsm.Current())
	c.contract.TerminatedAt = &at
	return nil
}

// Current returns the current state
func (c *ContractFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ContractFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
