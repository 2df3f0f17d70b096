package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

// Accounts manages tracked accounts and their project links. Deletes are
// guarded by explicit reference checks rather than storage-level cascades.
type Accounts struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewAccounts(repo *storage.Repository, logger *log.Logger) *Accounts {
	return &Accounts{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// CreateAccountParams describes a new account inside a project.
type CreateAccountParams struct {
	Name           string
	Type           core.AccountType
	InitialBalance core.Money
	ProjectID      string
}

func (a *Accounts) CreateAccount(ctx context.Context, p CreateAccountParams) (*core.Account, error) {
	q := a.repo.Queries()

	if p.Type == "" {
		p.Type = core.AccountDebit
	}
	if p.Type == core.AccountNil {
		// The sentinel is seeded once at init and never user-created.
		return nil, &core.ValidationError{Field: "type", Ref: string(p.Type), Reason: "the nil account is a managed singleton"}
	}

	project, err := q.GetProject(ctx, p.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: p.ProjectID}
	}

	existing, err := q.GetAccountByName(ctx, p.ProjectID, p.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &core.ValidationError{Field: "name", Ref: p.Name, Reason: "account already exists in this project"}
	}

	acct := core.Account{
		ID:             uuid.NewString(),
		Name:           p.Name,
		Type:           p.Type,
		InitialBalance: p.InitialBalance,
		CurrentBalance: p.InitialBalance,
	}
	if err := acct.Validate(); err != nil {
		return nil, err
	}

	err = a.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.InsertAccount(ctx, acct); err != nil {
			return err
		}
		return q.AttachAccount(ctx, p.ProjectID, acct.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	a.logger.InfoContext(ctx, "Account created",
		log.FieldAccount, acct.ID, "name", acct.Name, log.FieldProject, p.ProjectID)
	return &acct, nil
}

// AccountPatch lists the fields an account edit may change.
type AccountPatch struct {
	Name           *string
	Type           *core.AccountType
	InitialBalance *core.Money
}

func (a *Accounts) EditAccount(ctx context.Context, id string, patch AccountPatch) (*core.Account, error) {
	q := a.repo.Queries()

	acct, err := q.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &core.NotFoundError{Entity: "account", Ref: id}
	}
	if acct.Type == core.AccountNil {
		return nil, &core.ValidationError{Field: "account", Ref: id, Reason: "the nil account cannot be edited"}
	}

	var balanceShift core.Money
	if patch.Name != nil {
		acct.Name = *patch.Name
	}
	if patch.Type != nil {
		if *patch.Type == core.AccountNil {
			return nil, &core.ValidationError{Field: "type", Ref: string(*patch.Type), Reason: "the nil account is a managed singleton"}
		}
		acct.Type = *patch.Type
	}
	if patch.InitialBalance != nil {
		balanceShift = *patch.InitialBalance - acct.InitialBalance
		acct.InitialBalance = *patch.InitialBalance
	}
	if err := acct.Validate(); err != nil {
		return nil, err
	}

	err = a.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateAccount(ctx, *acct); err != nil {
			return err
		}
		if balanceShift != 0 {
			// The cached balance tracks initial balance plus flows.
			return q.AdjustAccountBalance(ctx, id, balanceShift)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("edit account: %w", err)
	}
	acct.CurrentBalance += balanceShift
	return acct, nil
}

// DeleteAccount removes an account. The delete is restricted while any
// ledger row still references the account, and the nil sentinel is
// permanently protected.
func (a *Accounts) DeleteAccount(ctx context.Context, id string) error {
	q := a.repo.Queries()

	acct, err := q.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if acct == nil {
		return &core.NotFoundError{Entity: "account", Ref: id}
	}
	if acct.Type == core.AccountNil {
		return &core.ReferentialError{Entity: "account", Ref: id, By: "the ledger (nil account is permanent)"}
	}

	refs, err := q.CountAccountTransactions(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &core.ReferentialError{Entity: "account", Ref: id, By: fmt.Sprintf("%d transactions", refs)}
	}

	err = a.repo.InTx(ctx, func(q *storage.Queries) error {
		return q.DeleteAccount(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	a.logger.InfoContext(ctx, "Account deleted", log.FieldAccount, id, "name", acct.Name)
	return nil
}

func (a *Accounts) GetAccount(ctx context.Context, id string) (*core.Account, error) {
	acct, err := a.repo.Queries().GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, &core.NotFoundError{Entity: "account", Ref: id}
	}
	return acct, nil
}

func (a *Accounts) ListAccounts(ctx context.Context, projectID string) ([]core.Account, error) {
	project, err := a.repo.Queries().GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: projectID}
	}
	return a.repo.Queries().ListAccountsByProject(ctx, projectID)
}

// AttachAccount links an existing account to another project.
func (a *Accounts) AttachAccount(ctx context.Context, projectID, accountID string) error {
	q := a.repo.Queries()
	project, err := q.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return &core.NotFoundError{Entity: "project", Ref: projectID}
	}
	acct, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if acct == nil {
		return &core.NotFoundError{Entity: "account", Ref: accountID}
	}
	return q.AttachAccount(ctx, projectID, accountID)
}
