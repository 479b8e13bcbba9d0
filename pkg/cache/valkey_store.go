package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Each cache key is a hash holding the payload and the key's generation, so
// every command touches a single slot.
const (
	fieldValue      = "v"
	fieldGeneration = "g"

	// generationTTL keeps a bumped generation around long enough to outlive
	// any read that started before the bump.
	generationTTL = 24 * time.Hour
)

var setIfGenerationScript = valkey.NewLuaScript(`
local g = redis.call('HGET', KEYS[1], 'g')
if (g or '0') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
return 1
`)

type ValkeyConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultValkeyConfig() *ValkeyConfig {
	return &ValkeyConfig{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// ValkeyStore is a Store backed by Redis or Valkey.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects eagerly and fails when the server is unreachable.
func NewValkeyStore(cfg *ValkeyConfig) (*ValkeyStore, error) {
	if cfg == nil {
		cfg = DefaultValkeyConfig()
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		DisableCache:     true,
		ConnWriteTimeout: cfg.WriteTimeout,
		Dialer:           net.Dialer{Timeout: cfg.DialTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("connect valkey %s: %w", cfg.Addr, err)
	}
	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Do(ctx, s.client.B().Hget().Key(key).Field(fieldValue).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmds := valkey.Commands{
		s.client.B().Hset().Key(key).FieldValue().FieldValue(fieldValue, valkey.BinaryString(value)).Build(),
		s.client.B().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build(),
	}
	return firstError(s.client.DoMulti(ctx, cmds...))
}

func (s *ValkeyStore) Generation(ctx context.Context, key string) (uint64, error) {
	g, err := s.client.Do(ctx, s.client.B().Hget().Key(key).Field(fieldGeneration).Build()).AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(g), nil
}

func (s *ValkeyStore) SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	args := []string{
		strconv.FormatUint(gen, 10),
		valkey.BinaryString(value),
		strconv.FormatInt(ttlSeconds(ttl), 10),
	}
	stored, err := setIfGenerationScript.Exec(ctx, s.client, []string{key}, args).AsInt64()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Delete sends single-key commands only; a multi-key DEL is rejected when the
// keys live in different slots.
func (s *ValkeyStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	cmds := make(valkey.Commands, 0, 3*len(keys))
	for _, k := range keys {
		cmds = append(cmds,
			s.client.B().Hdel().Key(k).Field(fieldValue).Build(),
			s.client.B().Hincrby().Key(k).Field(fieldGeneration).Increment(1).Build(),
			s.client.B().Expire().Key(k).Seconds(ttlSeconds(generationTTL)).Build(),
		)
	}
	return firstError(s.client.DoMulti(ctx, cmds...))
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}

func ttlSeconds(ttl time.Duration) int64 {
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func firstError(results []valkey.ValkeyResult) error {
	var errs []error
	for _, r := range results {
		if err := r.Error(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Store = (*ValkeyStore)(nil)
