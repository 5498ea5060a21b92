// Package cache implementa la caché de estadísticas en Redis con invalidación por versión:
// cada llave incluye la versión vigente y una escritura incrementa la versión.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	versionKey = "piecework:stats:version"
	// BumpChannel canal donde se publica cada nueva versión.
	BumpChannel = "piecework.stats.bump"
)

// StatsCache caché JSON versionada sobre Redis. Un *StatsCache nil o sin cliente
// se comporta como caché deshabilitada.
//
// Mientras ListenForInvalidation está suscrita, la versión se toma de la copia local que
// mantienen los eventos de BumpChannel y BuildKey no consulta Redis.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration

	listening atomic.Bool
	local     atomic.Int64
}

// NewStatsCache construye la caché.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Version versión vigente; la inicializa en 1 si no existe.
func (c *StatsCache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	if c.listening.Load() {
		if v := c.local.Load(); v > 0 {
			return v, nil
		}
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		c.observe(1)
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	c.observe(ver)
	return ver, nil
}

// observe adelanta la copia local; nunca retrocede.
func (c *StatsCache) observe(ver int64) {
	for {
		cur := c.local.Load()
		if ver <= cur || c.local.CompareAndSwap(cur, ver) {
			return
		}
	}
}

// BuildKey compone la llave con la versión vigente.
func (c *StatsCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON lee la llave en dest o, si no existe, ejecuta loader y guarda su resultado.
// Los errores de loader se devuelven tal cual.
func (c *StatsCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c == nil || c.client == nil {
		return load(ctx, dest, loader)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida todas las llaves incrementando la versión y publica el evento.
func (c *StatsCache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	c.observe(ver)
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation se suscribe a BumpChannel y mantiene la versión local con las
// publicadas por cualquier instancia hasta que ctx termine. Vuelve cuando la suscripción
// está confirmada; el consumo corre en su propia goroutine.
func (c *StatsCache) ListenForInvalidation(ctx context.Context, log zerolog.Logger) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	// La versión pudo cambiar antes de suscribirse.
	c.local.Store(0)
	c.listening.Store(true)
	go func() {
		defer func() {
			c.listening.Store(false)
			_ = pubsub.Close()
		}()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					log.Warn().Str("payload", msg.Payload).Msg("versión de caché inválida")
					continue
				}
				c.observe(ver)
				log.Debug().Int64("version", ver).Msg("caché de estadísticas invalidada")
			}
		}
	}()
	return nil
}
