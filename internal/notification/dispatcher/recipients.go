package dispatcher

import (
	"context"

	accountmodels "peerhelp/internal/account/models"
	"peerhelp/internal/notification/models"
	id "peerhelp/pkg/domain"
)

// AccountReader is the read side of the account store.
type AccountReader interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
}

// AccountRecipients resolves recipients from account records.
type AccountRecipients struct {
	accounts AccountReader
}

func NewAccountRecipients(accounts AccountReader) *AccountRecipients {
	return &AccountRecipients{accounts: accounts}
}

func (a *AccountRecipients) Recipient(ctx context.Context, accountID id.AccountID) (*models.Recipient, error) {
	acc, err := a.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &models.Recipient{ID: acc.ID, TrustedChannelID: acc.TrustedChannelID}, nil
}
