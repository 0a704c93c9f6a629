package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// pingProbe adapts a plain ping function into a Checker so the two
// dependencies share one result shape.
type pingProbe struct {
	name string
	ping func(context.Context) error
}

func (p *pingProbe) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: p.name, Healthy: true}
	if err := p.ping(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

// NewDBChecker pings the SQL pool beneath the gorm handle. Returns nil
// when there is no database to check.
func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &pingProbe{name: "db", ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// NewRedisChecker pings the revocation registry backend.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &pingProbe{name: "redis", ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}
