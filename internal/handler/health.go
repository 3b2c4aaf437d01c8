package handler

import (
	"context"
	"net/http"
	"time"

	"ecosort/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity plus the depth of the async
// delivery queues, so a stuck voucher pipeline shows up without shelling
// into Redis. Credentials and DSNs are never echoed back.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbOK := false
		if sqlDB, err := db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
			dbOK = true
		}
		redisOK := rdb.Ping(ctx).Err() == nil

		body := gin.H{
			"status": "ok",
			"db":     statusWord(dbOK),
			"redis":  statusWord(redisOK),
		}
		if redisOK {
			body["queues"] = gin.H{
				"voucher": queueDepth(ctx, rdb, worker.QueueVoucher),
				"email":   queueDepth(ctx, rdb, worker.QueueEmail),
			}
		}

		code := http.StatusOK
		if !dbOK || !redisOK {
			code = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		c.JSON(code, body)
	}
}

func statusWord(ok bool) string {
	if ok {
		return "connected"
	}
	return "error"
}

// queueDepth reports the live backlog and dead-letter count for one queue.
func queueDepth(ctx context.Context, rdb *redis.Client, queue string) gin.H {
	pending := rdb.LLen(ctx, queue).Val()
	dead, _ := worker.DLQLength(ctx, rdb, queue)
	return gin.H{"pending": pending, "dead_letter": dead}
}
