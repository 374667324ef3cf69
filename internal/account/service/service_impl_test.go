package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/account/domain"
	pkgdb "github.com/haulbase/haulbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupAccountService(t *testing.T) domain.Service {
	t.Helper()

	db, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CustomerAccount{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{DB: db, Log: zap.NewNop(), GenID: node})
}

func TestCreate_CustomerRequiresPrimaryContact(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateAccountRequest{
		Name:        "Acme Energy",
		AccountType: domain.AccountTypeCustomer,
	})
	assert.ErrorIs(t, err, domain.ErrMissingPrimaryContact)

	account, err := svc.Create(ctx, domain.CreateAccountRequest{
		Name:                "Acme Energy",
		AccountNumber:       "AC-100",
		AccountType:         domain.AccountTypeCustomer,
		PrimaryContactName:  "Pat Doe",
		PrimaryContactEmail: "pat@acme.example",
	})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)
	assert.True(t, account.Active)
	assert.Equal(t, "AC-100", account.AccountNumber)
}

func TestCreate_RejectsDuplicateAccountNumber(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	req := domain.CreateAccountRequest{
		Name:          "Westfield Resources",
		AccountNumber: "AC-200",
		AccountType:   domain.AccountTypeGenerator,
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestCreate_GeneratesAccountNumberWhenBlank(t *testing.T) {
	svc := setupAccountService(t)

	account, err := svc.Create(context.Background(), domain.CreateAccountRequest{
		Name:        "No Number Yet",
		AccountType: domain.AccountTypeThirdParty,
	})
	require.NoError(t, err)
	assert.Equal(t, "AC-"+account.ID.String(), account.AccountNumber)
}

func TestCreate_GeneratorNeedsNoContact(t *testing.T) {
	svc := setupAccountService(t)

	account, err := svc.Create(context.Background(), domain.CreateAccountRequest{
		Name:        "Westfield Resources",
		AccountType: domain.AccountTypeGenerator,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountTypeGenerator, account.AccountType)
}

func TestCreate_Validation(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateAccountRequest{AccountType: domain.AccountTypeGenerator})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateAccountRequest{Name: "x", AccountType: "BOGUS"})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountType)
}

func TestGetByID(t *testing.T) {
	svc := setupAccountService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateAccountRequest{
		Name:        "Westfield Resources",
		AccountType: domain.AccountTypeGenerator,
	})
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, domain.GetAccountRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByID(ctx, domain.GetAccountRequest{ID: "not-a-snowflake"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	node, _ := snowflake.NewNode(2)
	_, err = svc.GetByID(ctx, domain.GetAccountRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
