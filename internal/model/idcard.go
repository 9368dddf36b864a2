package model

import "time"

// IDCard — серверная модель удостоверения сотрудника.
// Колонки gorm и поля bson совпадают, чтобы частичные обновления
// передавались в репозитории одной и той же картой полей.
type IDCard struct {
	ID     string `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID string `gorm:"not null;index" bson:"user" json:"user"` // владелец записи

	FullName    string `gorm:"not null" bson:"full_name" json:"fullName"`
	Designation string `bson:"designation,omitempty" json:"designation,omitempty"`
	Department  string `bson:"department,omitempty" json:"department,omitempty"`
	IDNumber    string `gorm:"not null;uniqueIndex" bson:"id_number" json:"idNumber"`

	IssueDate  *time.Time `bson:"issue_date,omitempty" json:"issueDate"`
	ExpiryDate *time.Time `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`

	// Photo — имя файла в хранилище фотографий, не URL.
	Photo *string `bson:"photo,omitempty" json:"photo"`

	// Seq растёт с каждой вставкой и задаёт порядок выдачи; created_at в mongo
	// хранится с точностью до миллисекунды и порядок внутри пачки не держит.
	Seq int64 `gorm:"not null;default:0;index" bson:"seq" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" bson:"updated_at" json:"updatedAt"`
}

// TableName фиксирует имя таблицы независимо от правил множественного числа gorm.
func (IDCard) TableName() string { return "id_cards" }

// Поля, допустимые для частичного обновления.
const (
	FieldFullName    = "full_name"
	FieldDesignation = "designation"
	FieldDepartment  = "department"
	FieldIDNumber    = "id_number"
	FieldIssueDate   = "issue_date"
	FieldExpiryDate  = "expiry_date"
	FieldPhoto       = "photo"
)

// PhotoName возвращает имя файла фотографии или пустую строку.
func (c *IDCard) PhotoName() string {
	if c.Photo == nil {
		return ""
	}
	return *c.Photo
}
