package repository

import (
	"context"

	"marketplace-service/internal/entity"
)

type BankInfoRepository struct {
	db DBTX
}

func NewBankInfoRepository(db DBTX) *BankInfoRepository {
	return &BankInfoRepository{db}
}

func (r *BankInfoRepository) ListBankInfo(ctx context.Context) ([]*entity.BankInfo, error) {
	query := `SELECT id, bank_name, account_number, account_name, created_at FROM bank_info ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err, "list bank info")
	}
	defer rows.Close()

	infos := []*entity.BankInfo{}
	for rows.Next() {
		var info entity.BankInfo
		if err := rows.Scan(&info.ID, &info.BankName, &info.AccountNumber, &info.AccountName, &info.CreatedAt); err != nil {
			return nil, translate(err, "scan bank info")
		}
		infos = append(infos, &info)
	}
	return infos, translate(rows.Err(), "list bank info")
}

func (r *BankInfoRepository) GetBankInfoByID(ctx context.Context, id int64) (*entity.BankInfo, error) {
	info := &entity.BankInfo{}
	query := `SELECT id, bank_name, account_number, account_name, created_at FROM bank_info WHERE id = ?`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&info.ID, &info.BankName, &info.AccountNumber, &info.AccountName, &info.CreatedAt)
	if err != nil {
		return nil, translate(err, "get bank info")
	}
	return info, nil
}

func (r *BankInfoRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT id FROM bank_info WHERE id = ?`, id)
}

func (r *BankInfoRepository) CreateBankInfo(ctx context.Context, bankName, accountNumber, accountName string) (int64, error) {
	query := `INSERT INTO bank_info (bank_name, account_number, account_name) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, bankName, accountNumber, accountName)
	if err != nil {
		return 0, translate(err, "insert bank info")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, translate(err, "insert bank info")
	}
	return id, nil
}

// UpdateBankInfo keeps the current value of every nil field.
func (r *BankInfoRepository) UpdateBankInfo(ctx context.Context, id int64, bankName, accountNumber, accountName *string) error {
	query := `UPDATE bank_info SET bank_name = COALESCE(?, bank_name), account_number = COALESCE(?, account_number), account_name = COALESCE(?, account_name) WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, bankName, accountNumber, accountName, id)
	return translate(err, "update bank info")
}

func (r *BankInfoRepository) DeleteBankInfo(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bank_info WHERE id = ?`, id)
	return translate(err, "delete bank info")
}
