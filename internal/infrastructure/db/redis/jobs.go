package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
)

const jobTTL = time.Hour

// totalField stores the expected result count inside the job hash; the
// leading underscore keeps it clear of client ids (uuids).
const totalField = "_total"

// JobResults collects bulk-reminder messages per job in a Redis hash.
// Key format: bulkjob:<job_id>, one field per client id.
type JobResults struct {
	client *redis.Client
}

// NewJobResults creates a JobResults wrapping the given Redis client.
func NewJobResults(client *redis.Client) *JobResults {
	return &JobResults{client: client}
}

func (j *JobResults) Init(ctx context.Context, jobID string, total int) error {
	key := j.key(jobID)
	if err := j.client.HSet(ctx, key, totalField, total).Err(); err != nil {
		return fmt.Errorf("job init: %w", err)
	}
	return j.client.Expire(ctx, key, jobTTL).Err()
}

func (j *JobResults) Add(ctx context.Context, jobID, clientID, message string) error {
	return j.client.HSet(ctx, j.key(jobID), clientID, message).Err()
}

func (j *JobResults) Get(ctx context.Context, jobID string) (map[string]string, int, error) {
	fields, err := j.client.HGetAll(ctx, j.key(jobID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("job get: %w", err)
	}
	if len(fields) == 0 {
		return nil, 0, domain.ErrJobNotFound
	}

	total, _ := strconv.Atoi(fields[totalField])
	delete(fields, totalField)
	return fields, total, nil
}

func (j *JobResults) key(jobID string) string {
	return "bulkjob:" + jobID
}
