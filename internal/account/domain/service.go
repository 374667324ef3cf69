package domain

import (
	"context"
	"errors"
)

type CreateAccountRequest struct {
	Name                string
	AccountNumber       string
	AccountType         AccountType
	PrimaryContactName  string
	PrimaryContactEmail string
}

type GetAccountRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateAccountRequest) (CustomerAccount, error)
	GetByID(context.Context, GetAccountRequest) (CustomerAccount, error)
	List(context.Context) ([]CustomerAccount, error)
}

var (
	ErrInvalidName           = errors.New("invalid_name")
	ErrDuplicateAccount      = errors.New("duplicate_account_number")
	ErrInvalidAccountType    = errors.New("invalid_account_type")
	ErrMissingPrimaryContact = errors.New("missing_primary_contact")
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
)
