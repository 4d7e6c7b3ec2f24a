package service

import (
	"context"
	"time"

	"civichub/internal/model"
	"civichub/internal/pkg"
	"civichub/internal/repository/mysql"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.MembershipOutbox) error

// OutboxRelayer 定期扫描 membership_outbox，把 pending 事件投递出去
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      mysql.NewOutboxRepository(db),
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("outbox query failed")
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			log.Warn().Err(err).Uint64("id", ob.ID).Str("event", ob.EventType).Msg("outbox send failed")
			_ = r.repo.MarkFailed(ctx, ob.ID)
			continue
		}
		_ = r.repo.MarkSent(ctx, ob.ID)
	}
}

// KafkaSender 以 community_id 为 key 投递到 kafka，同社区事件保序
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.MembershipOutbox) error {
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.CommunityID), []byte(ob.Payload))
	}
}

// LogSender 没配 kafka 时的兜底 sender
func LogSender(ctx context.Context, ob *model.MembershipOutbox) error {
	log.Info().
		Str("event", ob.EventType).
		Uint64("community_id", ob.CommunityID).
		Uint64("actor_id", ob.ActorID).
		Uint64("target_id", ob.TargetID).
		Msg("membership event")
	return nil
}
