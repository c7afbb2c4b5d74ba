package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/linkshort/internal/events"
	"github.com/serroba/linkshort/internal/handlers"
	"github.com/serroba/linkshort/internal/health"
	"github.com/serroba/linkshort/internal/messaging"
	"github.com/serroba/linkshort/internal/middleware"
	"github.com/serroba/linkshort/internal/ratelimit"
	"github.com/serroba/linkshort/internal/shortener"
	"github.com/serroba/linkshort/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrRedisDisabled is returned when Redis is requested but no address is configured.
var ErrRedisDisabled = errors.New("redis address not configured")

const feedConsumerGroup = "link-feed"

type Options struct {
	Port        int    `default:"8888"               help:"Port to listen on"                                         short:"p"`
	Prefix      string `default:"https://short.url/" help:"Prefix prepended to every token"`
	TokenLength int    `default:"6"                  help:"Maximum number of base62 characters in a token"            short:"l"`
	MaxAttempts int    `default:"8"                  help:"Timestamp-salted retries before the counter fallback"`
	RedisAddr   string `default:""                   help:"Redis address; empty keeps rate limits and events in process" short:"r"`
	LogFormat   string `default:"console"            help:"Log format: console or json"`
	LogLevel    string `default:"info"               help:"Minimum log level"`
	RateLimit   bool   `default:"true"               help:"Enable per-client rate limiting"`
}

// RedisEnabled reports whether a Redis address is configured.
func (o *Options) RedisEnabled() bool {
	return o.RedisAddr != ""
}

// RedisClient ties the Redis connection to the injector lifecycle.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error {
	return c.Close()
}

func (c *RedisClient) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.Ping(ctx).Err()
}

func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		level, err := zapcore.ParseLevel(opts.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}

		var cfg zap.Config

		switch opts.LogFormat {
		case "json":
			cfg = zap.NewProductionConfig()
		case "console", "":
			cfg = zap.NewDevelopmentConfig()
		default:
			return nil, fmt.Errorf("unknown log format %q", opts.LogFormat)
		}

		cfg.Level = zap.NewAtomicLevelAt(level)

		return cfg.Build()
	})
}

func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.RedisEnabled() {
			return nil, ErrRedisDisabled
		}

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Store, error) {
		opts := do.MustInvoke[*Options](i)

		return shortener.New(
			shortener.WithPrefix(opts.Prefix),
			shortener.WithLength(opts.TokenLength),
			shortener.WithMaxAttempts(opts.MaxAttempts),
		), nil
	})
}

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		var backend ratelimit.Store = store.NewRateLimitMemory()
		if opts.RedisEnabled() {
			backend = store.NewRateLimitRedis(do.MustInvoke[*RedisClient](i).Client)
		}

		return ratelimit.NewLimiter(backend, ratelimit.DefaultPolicy()), nil
	})
}

// PubSubPackage provides the feed transport: a Redis stream when Redis is configured,
// otherwise one in-process channel acting as both publisher and subscriber.
func PubSubPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger), nil
	})

	do.Provide(i, func(i *do.Injector) (message.Publisher, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.RedisEnabled() {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[*RedisClient](i).Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return publisher, nil
	})

	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.RedisEnabled() {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		}

		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*RedisClient](i).Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: feedConsumerGroup,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		return subscriber, nil
	})
}

func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		return messaging.NewPublisherGroup(do.MustInvoke[message.Publisher](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[events.LinkCreated], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[events.LinkCreated](group.Publisher(), events.TopicLinkCreated), nil
	})
}

func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(events.NewFeedConsumer(subscriber, logger))

		return group, nil
	})
}

func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		links := do.MustInvoke[*shortener.Store](i)

		generateID, err := nanoid.Standard(21)
		if err != nil {
			return nil, fmt.Errorf("request id generator: %w", err)
		}

		api := humachi.New(router, huma.DefaultConfig("Link Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestID(generateID), middleware.AccessLog(logger))

		if opts.RateLimit {
			api.UseMiddleware(middleware.RateLimiter(api, do.MustInvoke[*ratelimit.Limiter](i), logger))
		}

		var redisChecker health.Checker
		if opts.RedisEnabled() {
			redisChecker = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(redisChecker, links))
		handlers.RegisterRoutes(api, handlers.NewLinkHandler(
			links,
			do.MustInvoke[messaging.Publish[events.LinkCreated]](i),
			logger,
		))

		return api, nil
	})
}

// ServerPackages registers everything the HTTP server needs.
func ServerPackages(i *do.Injector) {
	LoggerPackage(i)
	RedisPackage(i)
	StorePackage(i)
	RateLimitPackage(i)
	PubSubPackage(i)
	PublisherGroupPackage(i)
	ConsumerGroupPackage(i)
	HTTPPackage(i)
}
