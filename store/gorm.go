package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sanskar717/stablecoin-backend/core"
)

// CollateralColumn serializes the per-asset collateral map into a JSON
// column.
type CollateralColumn map[string]decimal.Decimal

func (c CollateralColumn) Value() (driver.Value, error) {
	valueString, err := json.Marshal(c)
	return string(valueString), err
}

func (c *CollateralColumn) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return errors.Errorf("unsupported collateral column type %T", value)
	}
}

type PositionRecord struct {
	AccountId  string           `gorm:"column:account_id;primaryKey"`
	Collateral CollateralColumn `gorm:"column:collateral;type:json"`
	Debt       decimal.Decimal  `gorm:"column:debt;type:decimal(38,18)"`
	MintRatio  decimal.Decimal  `gorm:"column:mint_ratio;type:decimal(38,18)"`
	CreatedAt  int64            `gorm:"column:created_at"`
	UpdatedAt  int64            `gorm:"column:updated_at"`
}

func (PositionRecord) TableName() string {
	return "positions"
}

// GormPositionStore persists positions through gorm.
type GormPositionStore struct {
	db *gorm.DB
}

func NewGormPositionStore(db *gorm.DB) *GormPositionStore {
	return &GormPositionStore{db: db}
}

func (s *GormPositionStore) Migrate() error {
	return s.db.AutoMigrate(&PositionRecord{})
}

func (s *GormPositionStore) GetPosition(ctx context.Context, accountId uuid.UUID) (*core.Position, error) {
	var record PositionRecord
	if err := s.db.WithContext(ctx).First(&record, "account_id = ?", accountId.String()).Error; err != nil {
		return nil, err
	}
	return recordToPosition(&record)
}

func (s *GormPositionStore) UpsertPosition(ctx context.Context, position *core.Position) error {
	return s.db.WithContext(ctx).Save(positionToRecord(position)).Error
}

func (s *GormPositionStore) ListPositions(ctx context.Context) ([]*core.Position, error) {
	var records []PositionRecord
	if err := s.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}

	positions := make([]*core.Position, 0, len(records))
	for i := range records {
		position, err := recordToPosition(&records[i])
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, nil
}

func positionToRecord(position *core.Position) *PositionRecord {
	collateral := make(CollateralColumn, len(position.Collateral))
	for assetId, amount := range position.Collateral {
		collateral[assetId] = amount
	}
	return &PositionRecord{
		AccountId:  position.AccountId.String(),
		Collateral: collateral,
		Debt:       position.Debt,
		MintRatio:  position.MintRatio,
		CreatedAt:  position.CreatedAt,
		UpdatedAt:  position.UpdatedAt,
	}
}

func recordToPosition(record *PositionRecord) (*core.Position, error) {
	accountId, err := uuid.FromString(record.AccountId)
	if err != nil {
		return nil, errors.Wrap(err, "parse account id")
	}

	collateral := make(map[string]decimal.Decimal, len(record.Collateral))
	for assetId, amount := range record.Collateral {
		collateral[assetId] = amount
	}
	return &core.Position{
		AccountId:  accountId,
		Collateral: collateral,
		Debt:       record.Debt,
		MintRatio:  record.MintRatio,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}
