package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type LimiterSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	limiter *RedisLimiter
	ctx     context.Context
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.limiter = NewRedisLimiter(client)
	s.ctx = context.Background()
}

func (s *LimiterSuite) TestAllowsUpToLimit() {
	for i := 0; i < 5; i++ {
		allowed, err := s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
		s.Require().NoError(err)
		s.True(allowed, "call %d should be within the limit", i+1)
	}
}

func (s *LimiterSuite) TestRejectsOverLimit() {
	for i := 0; i < 5; i++ {
		_, err := s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
		s.Require().NoError(err)
	}

	allowed, err := s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *LimiterSuite) TestWindowResets() {
	for i := 0; i < 6; i++ {
		_, err := s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
		s.Require().NoError(err)
	}

	s.mini.FastForward(time.Minute + time.Second)

	allowed, err := s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *LimiterSuite) TestKeysAreIndependent() {
	for i := 0; i < 6; i++ {
		_, err := s.limiter.Allow(s.ctx, "conn-1:join_room", 5, time.Minute)
		s.Require().NoError(err)
	}

	allowed, err := s.limiter.Allow(s.ctx, "conn-2:join_room", 5, time.Minute)
	s.Require().NoError(err)
	s.True(allowed)

	allowed, err = s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *LimiterSuite) TestErrorWhenBackendDown() {
	s.mini.Close()

	_, err := s.limiter.Allow(s.ctx, "conn-1:create_room", 5, time.Minute)
	s.Error(err)
}

func (s *LimiterSuite) TestKeyFormat() {
	s.Equal("conn-1:create_room", Key("conn-1", "create_room"))
}

func TestUnlimitedAlwaysAllows(t *testing.T) {
	limiter := NewUnlimited()
	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(context.Background(), "any", 0, 0)
		if err != nil || !allowed {
			t.Fatalf("unlimited limiter rejected call %d: allowed=%v err=%v", i, allowed, err)
		}
	}
}
