package event

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	salesdomain "github.com/haulbase/haulbase/internal/salesline/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SalesLinesChangedTopic = "salesline.changed"

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type outboxPublisher struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutboxPublisher(db *gorm.DB, genID *snowflake.Node) EventPublisher {
	return &outboxPublisher{
		db:    db,
		genID: genID,
	}
}

func (p *outboxPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	row := salesdomain.SalesLineEvent{
		ID:        p.genID.Generate(),
		EventType: topic,
		Payload:   datatypes.JSON(payload),
		Published: false,
		CreatedAt: time.Now().UTC(),
	}
	return p.db.WithContext(ctx).Create(&row).Error
}
