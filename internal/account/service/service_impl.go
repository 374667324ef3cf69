package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulbase/haulbase/internal/account/domain"
	"github.com/haulbase/haulbase/pkg/db"
	"github.com/haulbase/haulbase/pkg/db/option"
	"github.com/haulbase/haulbase/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[domain.CustomerAccount]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		store: repository.ProvideStore[domain.CustomerAccount](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAccountRequest) (domain.CustomerAccount, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CustomerAccount{}, domain.ErrInvalidName
	}

	switch req.AccountType {
	case domain.AccountTypeCustomer, domain.AccountTypeGenerator, domain.AccountTypeThirdParty:
	default:
		return domain.CustomerAccount{}, domain.ErrInvalidAccountType
	}

	// Billable accounts must carry a primary contact before invoicing
	// can address anyone.
	contactName := strings.TrimSpace(req.PrimaryContactName)
	contactEmail := strings.TrimSpace(req.PrimaryContactEmail)
	if req.AccountType == domain.AccountTypeCustomer && (contactName == "" || contactEmail == "") {
		return domain.CustomerAccount{}, domain.ErrMissingPrimaryContact
	}

	now := time.Now().UTC()
	id := s.genID.Generate()
	accountNumber := strings.TrimSpace(req.AccountNumber)
	if accountNumber == "" {
		accountNumber = "AC-" + id.String()
	}
	account := domain.CustomerAccount{
		ID:                  id,
		Name:                name,
		AccountNumber:       accountNumber,
		AccountType:         req.AccountType,
		PrimaryContactName:  contactName,
		PrimaryContactEmail: contactEmail,
		Active:              true,
		Metadata:            datatypes.JSONMap{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.store.Create(ctx, &account); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.CustomerAccount{}, domain.ErrDuplicateAccount
		}
		return domain.CustomerAccount{}, err
	}

	return account, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAccountRequest) (domain.CustomerAccount, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.CustomerAccount{}, domain.ErrInvalidID
	}

	item, err := s.store.FindOne(ctx, &domain.CustomerAccount{ID: id})
	if err != nil {
		return domain.CustomerAccount{}, err
	}
	if item == nil {
		return domain.CustomerAccount{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.CustomerAccount, error) {
	items, err := s.store.Find(ctx, &domain.CustomerAccount{}, option.OrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.CustomerAccount, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, *item)
	}
	return accounts, nil
}
