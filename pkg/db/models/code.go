package models

// ReferenceCode maps a classification code to its description
type ReferenceCode struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Code        string `gorm:"column:kode;not null"`
	Description string `gorm:"column:keterangan;not null;uniqueIndex"`
}

func (ReferenceCode) TableName() string {
	return "kode_surat"
}
