package queue

import (
	"github.com/hibiken/asynq"
	"github.com/hugh/rally/pkg/config"
)

// Queue names. Verification mail goes to QueueMail so a backlog of
// low-priority work never delays account activation.
const (
	QueueMail    = "mail"
	QueueDefault = "default"
	QueueLow     = "low"
)

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
	}
}

func NewClient(cfg *config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

func NewServer(cfg *config.RedisConfig, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueMail:    6,
				QueueDefault: 3,
				QueueLow:     1,
			},
		},
	)
}
