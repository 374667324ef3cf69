package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type AccountType string

var (
	AccountTypeCustomer   AccountType = "CUSTOMER"
	AccountTypeGenerator  AccountType = "GENERATOR"
	AccountTypeThirdParty AccountType = "THIRD_PARTY"
)

type CustomerAccount struct {
	ID                  snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name                string            `json:"name" gorm:"type:text;not null"`
	AccountNumber       string            `json:"account_number" gorm:"type:text;not null;uniqueIndex"`
	AccountType         AccountType       `json:"account_type" gorm:"type:text;not null"`
	PrimaryContactName  string            `json:"primary_contact_name,omitempty" gorm:"type:text"`
	PrimaryContactEmail string            `json:"primary_contact_email,omitempty" gorm:"type:text"`
	Active              bool              `json:"active" gorm:"not null;default:true"`
	Metadata            datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt           time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CustomerAccount) TableName() string { return "customer_accounts" }
