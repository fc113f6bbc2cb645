package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/pkg/config"
)

const cartKeyPrefix = "inventario:cart:"

// cmdable subconjunto de go-redis que usa el almacén de carritos.
type cmdable interface {
	Ping(ctx context.Context) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// CartStore carritos serializados en JSON, una clave por identidad, con TTL.
// Cada Save renueva la vigencia.
type CartStore struct {
	rdb cmdable
	ttl time.Duration
}

// NewCartStore ttl <= 0 = sin expiración.
func NewCartStore(rdb cmdable, ttl time.Duration) *CartStore {
	if ttl < 0 {
		ttl = 0
	}
	return &CartStore{rdb: rdb, ttl: ttl}
}

// NewClient abre la conexión (REDIS_URL tiene prioridad sobre REDIS_ADDR) y verifica con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	var opts *goredis.Options
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		if cfg.Addr == "" {
			return nil, errors.New("redis: REDIS_URL o REDIS_ADDR es obligatorio")
		}
		opts = &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func cartKey(ownerID string) string { return cartKeyPrefix + ownerID }

// Load devuelve el carrito de la identidad; vacío si no existe o expiró.
func (s *CartStore) Load(ctx context.Context, ownerID string) (*entity.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(ownerID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return entity.NewCart(), nil
		}
		return nil, domain.Storage("redis get cart", err)
	}
	cart := entity.NewCart()
	if err := json.Unmarshal([]byte(raw), cart); err != nil {
		return nil, domain.Storage("decode cart", err)
	}
	if cart.Items == nil {
		cart.Items = make(map[string]entity.CartItem)
	}
	return cart, nil
}

func (s *CartStore) Save(ctx context.Context, ownerID string, cart *entity.Cart) error {
	if cart.IsEmpty() {
		return s.Clear(ctx, ownerID)
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return domain.Storage("encode cart", err)
	}
	if err := s.rdb.Set(ctx, cartKey(ownerID), string(b), s.ttl).Err(); err != nil {
		return domain.Storage("redis set cart", err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, ownerID string) error {
	if err := s.rdb.Del(ctx, cartKey(ownerID)).Err(); err != nil {
		return domain.Storage("redis del cart", err)
	}
	return nil
}

// Ping health check del almacén.
func (s *CartStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
