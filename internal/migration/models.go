package migration

import (
	accountdomain "github.com/haulbase/haulbase/internal/account/domain"
	billingdomain "github.com/haulbase/haulbase/internal/billingconfig/domain"
	invoiceconfigdomain "github.com/haulbase/haulbase/internal/invoiceconfig/domain"
	salesdomain "github.com/haulbase/haulbase/internal/salesline/domain"
	ticketdomain "github.com/haulbase/haulbase/internal/truckticket/domain"
)

// Models returns every persisted model, in dependency order, for
// gorm-driven schema setup on non-postgres databases.
func Models() []any {
	return []any{
		&accountdomain.CustomerAccount{},
		&invoiceconfigdomain.InvoiceConfiguration{},
		&billingdomain.BillingConfiguration{},
		&billingdomain.MatchPredicate{},
		&ticketdomain.TruckTicket{},
		&salesdomain.AccountProductRate{},
		&salesdomain.SalesLine{},
		&salesdomain.SalesLineEvent{},
	}
}
