package entities

import "time"

// Record is one entry of the key-value store holding offline content.
type Record struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     []byte    `gorm:"type:blob" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Record) TableName() string {
	return "kv_records"
}
