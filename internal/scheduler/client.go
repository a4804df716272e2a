package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"settlement_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleResultsDeadline enqueues a deadline check for a run suspended at
// awaiting_results, to be processed at runAt.
func (c *Client) ScheduleResultsDeadline(ctx context.Context, runID, transactionID uuid.UUID, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewResultsDeadlineTask(ResultsDeadlinePayload{
		RunID:         runID.String(),
		TransactionID: transactionID.String(),
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// ScheduleMilestoneReminder enqueues a reminder for a critical milestone,
// to be processed at remindAt (typically the day before the target date).
func (c *Client) ScheduleMilestoneReminder(ctx context.Context, transactionID uuid.UUID, propertyAddress, milestone string, targetDate, remindAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewMilestoneReminderTask(MilestoneReminderPayload{
		TransactionID:   transactionID.String(),
		PropertyAddress: propertyAddress,
		Milestone:       milestone,
		TargetDate:      targetDate,
	})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(remindAt), asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
