package model

import "time"

// 操作の種類
type AuditAction string

const (
	//カートを注文として確定した操作。
	AuditActionFinalizeCart AuditAction = "FINALIZE_CART"
	//管理者が参照データを作成した操作。
	AuditActionCreateResource AuditAction = "CREATE_RESOURCE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceCart     AuditResourceType = "cart"
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceDiscount AuditResourceType = "discount"
	AuditResourceShipping AuditResourceType = "shipping"
)

// 監査ログ。「誰が」「何を」「どの対象に」行ったかを残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//補足情報（割引額や配送料など）をテキストで残す
	Detail string `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
