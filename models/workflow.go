package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"p9e.in/procurement/pkg/lifecycle"
)

// DocumentTransition is the audit record of one status action.
type DocumentTransition struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentType   lifecycle.DocType `gorm:"size:32;not null;index:idx_transition_doc" json:"documentType"`
	DocumentID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_transition_doc" json:"documentId"`
	FromStatus     lifecycle.Status  `gorm:"size:32" json:"fromStatus"`
	ToStatus       lifecycle.Status  `gorm:"size:32;not null" json:"toStatus"`
	Action         lifecycle.Action  `gorm:"size:32;not null" json:"action"`
	ActorCompanyID uuid.UUID         `gorm:"type:uuid;index" json:"actorCompanyId"`
	ActorUserID    uuid.UUID         `gorm:"type:uuid" json:"actorUserId"`
	ActorSide      lifecycle.Side    `gorm:"size:10" json:"actorSide"`
	Comment        string            `gorm:"type:text" json:"comment,omitempty"`
	Metadata       datatypes.JSON    `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	TransitionedAt time.Time         `gorm:"not null" json:"transitionedAt"`
}

func (DocumentTransition) TableName() string {
	return "document_transitions"
}

func (t *DocumentTransition) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
