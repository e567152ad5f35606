package heksher

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/biocatchltd/hekshermgmt/internal/config"
	"github.com/biocatchltd/hekshermgmt/pkg/circuitbreaker"
	pkgerrors "github.com/biocatchltd/hekshermgmt/pkg/errors"
)

// CircuitBreakerClient decorates a Client so that a misbehaving Heksher
// server trips the breaker and requests fail fast instead of piling up on a
// dead connection. Upstream 4xx responses are the caller's problem, not a
// sign of an unhealthy server, so they don't count as breaker failures.
type CircuitBreakerClient struct {
	inner Client
	cb    *circuitbreaker.Wrapper
}

func NewCircuitBreakerClient(inner Client, cfg config.CircuitBreakerConfig) *CircuitBreakerClient {
	cbCfg := circuitbreaker.DefaultConfig("heksher")
	if cfg.MaxRequests > 0 {
		cbCfg.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbCfg.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbCfg.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 {
		minRequests := cfg.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		cbCfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerClient{
		inner: inner,
		cb:    circuitbreaker.NewWrapper(cbCfg),
	}
}

func (c *CircuitBreakerClient) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		result, err := fn()
		var se *StatusError
		if err != nil && errors.As(err, &se) && se.StatusCode < 500 {
			// Surface the client error without counting it as a failure.
			return &result4xx{result: result, err: err}, nil
		}
		return result, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, pkgerrors.ErrServiceUnavailable.WithCause(err)
		}
		return nil, err
	}
	if wrapped, ok := result.(*result4xx); ok {
		return wrapped.result, wrapped.err
	}
	return result, nil
}

type result4xx struct {
	result interface{}
	err    error
}

func (c *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, func() (interface{}, error) {
		return nil, c.inner.Ping(ctx)
	})
	return err
}

func (c *CircuitBreakerClient) GetSettings(ctx context.Context) ([]Setting, error) {
	result, err := c.execute(ctx, func() (interface{}, error) {
		return c.inner.GetSettings(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Setting), nil
}

func (c *CircuitBreakerClient) GetRules(ctx context.Context, settingNames []string) (map[string][]Rule, error) {
	result, err := c.execute(ctx, func() (interface{}, error) {
		return c.inner.GetRules(ctx, settingNames)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string][]Rule), nil
}

func (c *CircuitBreakerClient) GetRulesForSetting(ctx context.Context, settingName string) ([]Rule, error) {
	result, err := c.execute(ctx, func() (interface{}, error) {
		return c.inner.GetRulesForSetting(ctx, settingName)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Rule), nil
}

func (c *CircuitBreakerClient) GetRule(ctx context.Context, ruleID int) (*RuleData, error) {
	result, err := c.execute(ctx, func() (interface{}, error) {
		return c.inner.GetRule(ctx, ruleID)
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(*RuleData), nil
}

func (c *CircuitBreakerClient) AddRule(ctx context.Context, setting string, featureValues map[string]string, value interface{}, metadata map[string]interface{}) (int, error) {
	result, err := c.execute(ctx, func() (interface{}, error) {
		return c.inner.AddRule(ctx, setting, featureValues, value, metadata)
	})
	if err != nil {
		return 0, err
	}
	if result == nil {
		return 0, nil
	}
	return result.(int), nil
}

func (c *CircuitBreakerClient) EditRuleValue(ctx context.Context, ruleID int, value interface{}) error {
	_, err := c.execute(ctx, func() (interface{}, error) {
		return nil, c.inner.EditRuleValue(ctx, ruleID, value)
	})
	return err
}

func (c *CircuitBreakerClient) UpdateRuleMetadata(ctx context.Context, ruleID int, metadata map[string]interface{}) error {
	_, err := c.execute(ctx, func() (interface{}, error) {
		return nil, c.inner.UpdateRuleMetadata(ctx, ruleID, metadata)
	})
	return err
}

func (c *CircuitBreakerClient) DeleteRule(ctx context.Context, ruleID int) error {
	_, err := c.execute(ctx, func() (interface{}, error) {
		return nil, c.inner.DeleteRule(ctx, ruleID)
	})
	return err
}

func (c *CircuitBreakerClient) GetContextFeatures(ctx context.Context) ([]string, error) {
	result, err := c.execute(ctx, func() (interface{}, error) {
		return c.inner.GetContextFeatures(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (c *CircuitBreakerClient) Close() {
	c.inner.Close()
}
