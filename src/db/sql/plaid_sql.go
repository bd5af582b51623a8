package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"

	"tally-server/src/db"
	"tally-server/src/models"
)

func GetPlaidItemsSQL(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.PlaidItem, error) {
	query := `SELECT id, user_id, item_id, institution_name, created_at FROM plaid_items WHERE user_id = $1`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PlaidItem
	for rows.Next() {
		var item models.PlaidItem
		err := rows.Scan(&item.ID, &item.UserID, &item.ItemID, &item.InstitutionName, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func SavePlaidItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID, accessToken, institutionName string) error {
	query := `
		INSERT INTO plaid_items (user_id, item_id, access_token, institution_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO NOTHING
	`
	_, err := pool.Exec(ctx, query, userID, itemID, accessToken, institutionName)
	return err
}

func GetPlaidAccessToken(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) (int64, string, error) {
	query := `SELECT id, access_token FROM plaid_items WHERE user_id = $1 AND id = $2`
	var dbItemID int64
	var accessToken string
	err := pool.QueryRow(ctx, query, userID, itemID).Scan(&dbItemID, &accessToken)
	return dbItemID, accessToken, err
}

func GetAccountsSQL(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) ([]models.Account, error) {
	query := `
		SELECT a.id, a.item_id, a.account_id, a.name, a.mask, a.type, a.subtype, COALESCE(a.current_balance::text, ''), a.created_at
		FROM accounts a
		JOIN plaid_items p ON a.item_id = p.id
		WHERE p.user_id = $1 AND p.id = $2
	`
	rows, err := pool.Query(ctx, query, userID, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(&account.ID, &account.ItemID, &account.AccountID, &account.Name,
			&account.Mask, &account.Type, &account.Subtype, &account.CurrentBalance, &account.CreatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func SaveAccounts(ctx context.Context, pool *pgxpool.Pool, dbItemID int64, accounts []plaid.AccountBase) error {
	for _, acc := range accounts {
		query := `
			INSERT INTO accounts (item_id, account_id, name, mask, type, subtype, current_balance)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (account_id) DO UPDATE SET
				name = $3,
				current_balance = $7,
				updated_at = NOW()
		`
		_, err := pool.Exec(ctx, query,
			dbItemID,
			acc.GetAccountId(),
			acc.GetName(),
			acc.GetMask(),
			string(acc.GetType()),
			string(acc.GetSubtype()),
			acc.GetBalances().Current.Get(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveSyncedLineItems maps freshly synced Plaid transactions into line
// items. Plaid's sign convention already matches ours: positive = money
// out, negative = money in. The owning account's name becomes the
// payment_method, the merchant the responsible_party.
func SaveSyncedLineItems(ctx context.Context, pool *pgxpool.Pool, userID int64, transactions []plaid.Transaction) error {
	accountNames, err := accountNamesForUser(ctx, pool, userID)
	if err != nil {
		return err
	}

	for _, txn := range transactions {
		amount := decimal.NewFromFloat(txn.GetAmount())
		party := txn.GetMerchantName()
		if party == "" {
			party = txn.GetName()
		}
		query := `
			INSERT INTO line_items (id, user_id, source_txn_id, date, description, amount, payment_method, responsible_party, source)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'plaid')
			ON CONFLICT (source_txn_id) DO NOTHING
		`
		_, err := pool.Exec(ctx, query,
			uuid.NewString(),
			userID,
			txn.GetTransactionId(),
			txn.GetDate(),
			txn.GetName(),
			amount,
			accountNames[txn.GetAccountId()],
			party,
		)
		if err != nil {
			return err
		}
	}

	if len(transactions) > 0 {
		db.ClearAllLineItemCaches()
	}
	return nil
}

func accountNamesForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) (map[string]string, error) {
	rows, err := pool.Query(ctx, `
		SELECT a.account_id, a.name
		FROM accounts a
		JOIN plaid_items p ON a.item_id = p.id
		WHERE p.user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func GetSyncCursor(ctx context.Context, pool *pgxpool.Pool, itemID int64) (string, error) {
	query := `SELECT COALESCE(sync_cursor, '') FROM plaid_items WHERE id = $1`
	var cursor string
	err := pool.QueryRow(ctx, query, itemID).Scan(&cursor)
	if err != nil {
		return "", err
	}
	return cursor, nil
}

func UpdateSyncCursor(ctx context.Context, pool *pgxpool.Pool, itemID int64, cursor string) error {
	query := `UPDATE plaid_items SET sync_cursor = $1 WHERE id = $2`
	_, err := pool.Exec(ctx, query, cursor, itemID)
	return err
}

func DeletePlaidItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID string) error {
	_, err := pool.Exec(ctx, `DELETE FROM plaid_items WHERE user_id = $1 AND id = $2`, userID, itemID)
	return err
}
