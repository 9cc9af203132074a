package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SplitMode decides who pays for a line item.
type SplitMode string

const (
	// SplitShared divides the price evenly across all participants of the purchase.
	SplitShared SplitMode = "shared"
	// SplitAssigned bills the whole price to a single participant.
	SplitAssigned SplitMode = "assigned"
)

func (m SplitMode) Valid() bool {
	return m == SplitShared || m == SplitAssigned
}

// Value stores the mode in the is_divided integer column (1 = shared).
func (m SplitMode) Value() (driver.Value, error) {
	switch m {
	case SplitShared, "":
		return int64(1), nil
	case SplitAssigned:
		return int64(0), nil
	}
	return nil, fmt.Errorf("unknown split mode %q", string(m))
}

func (m *SplitMode) Scan(src any) error {
	var divided int64
	switch v := src.(type) {
	case nil:
		divided = 1
	case int64:
		divided = v
	case bool:
		if v {
			divided = 1
		}
	case []byte:
		if _, err := fmt.Sscan(string(v), &divided); err != nil {
			return fmt.Errorf("scan split mode: %w", err)
		}
	case string:
		if _, err := fmt.Sscan(v, &divided); err != nil {
			return fmt.Errorf("scan split mode: %w", err)
		}
	default:
		return fmt.Errorf("scan split mode: unsupported type %T", src)
	}
	if divided != 0 {
		*m = SplitShared
	} else {
		*m = SplitAssigned
	}
	return nil
}

// TimestampLayout is the ISO-8601 form persisted in created_at columns.
// Fixed millisecond width keeps lexical and chronological order identical.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a UTC instant stored as ISO-8601 text.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *Timestamp) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = NewTimestamp(v)
		return nil
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("scan timestamp %q: %w", raw, err)
	}
	*t = NewTimestamp(parsed)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return t.Scan(raw)
}

type Person struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

func (Person) TableName() string {
	return "people"
}

type Product struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
}

func (Product) TableName() string {
	return "products"
}

type Purchase struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Establishment string    `json:"establishment"`
	IsCompleted   bool      `json:"is_completed"`
	CreatedAt     Timestamp `gorm:"column:created_at;type:text;autoCreateTime:false" json:"created_at"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseParticipant links a person to a purchase.
type PurchaseParticipant struct {
	PurchaseID uint `gorm:"primaryKey;autoIncrement:false"`
	PersonID   uint `gorm:"primaryKey;autoIncrement:false"`
}

func (PurchaseParticipant) TableName() string {
	return "purchase_people"
}

// LineItem is one product entry of a purchase. Price is absent until the
// shopper fills it in; PersonID is set only for SplitAssigned items, and is
// cleared by the store when that person is deleted.
type LineItem struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	PurchaseID uint                `json:"purchase_id"`
	ProductID  uint                `json:"product_id"`
	Price      decimal.NullDecimal `gorm:"type:real" json:"price"`
	SplitMode  SplitMode           `gorm:"column:is_divided" json:"split_mode"`
	PersonID   *uint               `json:"person_id"`
}

func (LineItem) TableName() string {
	return "purchase_products"
}

// PurchaseWithParticipants is a purchase annotated with its participant ids.
type PurchaseWithParticipants struct {
	Purchase
	ParticipantIDs []uint `gorm:"-" json:"participant_ids"`
}

// LineItemDetail is a line item annotated with its product's display name.
type LineItemDetail struct {
	LineItem
	ProductName string `json:"product_name"`
}
