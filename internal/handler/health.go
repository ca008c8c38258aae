package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the allocator breaker; never exposes
// credentials or internals. allocatorCB may be nil.
func Health(db *gorm.DB, rdb *redis.Client, allocatorCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		allocatorStatus := "n/a"
		if allocatorCB != nil {
			allocatorStatus = allocatorCB.State().String()
		}

		dlq := gin.H{}
		if redisStatus == "connected" {
			for _, q := range []string{worker.QueueReceipt, worker.QueueEmail} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" || allocatorStatus == infra.CBOpen.String() {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":        status == http.StatusOK,
			"db":        dbStatus,
			"redis":     redisStatus,
			"allocator": allocatorStatus,
			"dlq":       dlq,
		})
	}
}
