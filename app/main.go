package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	log "github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"

	"github.com/rbhz/word-lookup/app/api"
	"github.com/rbhz/word-lookup/app/bot"
	"github.com/rbhz/word-lookup/app/clients/upstream"
	"github.com/rbhz/word-lookup/app/db"
	"github.com/rbhz/word-lookup/app/lookup"
	"github.com/rbhz/word-lookup/app/metrics"
	"github.com/rbhz/word-lookup/app/proxy"
	"github.com/rbhz/word-lookup/app/sources"
)

type Opts struct {
	Port           int           `long:"port" env:"PORT" default:"3000" description:"Port to listen on"`
	MWAPIKey       string        `long:"mw-api-key" env:"MW_API_KEY" description:"Merriam-Webster API key"`
	SourceTimeout  time.Duration `long:"source-timeout" env:"SOURCE_TIMEOUT" default:"5s" description:"Timeout of a single source lookup"`
	SourcesFile    string        `long:"sources-file" env:"SOURCES_FILE" description:"YAML file replacing built-in sources"`
	DisplayOrder   []string      `long:"display-order" env:"DISPLAY_ORDER" env-delim:"," description:"Source ids to display, in order"`
	ProxyPrefix    string        `long:"proxy-prefix" env:"PROXY_PREFIX" default:"/api/proxy" description:"Path rewritten proxy links point to"`
	NoProxyRewrite bool          `long:"no-proxy-rewrite" env:"NO_PROXY_REWRITE" description:"Keep proxied page links untouched"`
	RedisURL       string        `long:"redis" env:"REDIS_URL" description:"Redis cache URL"`
	CacheBoltDB    string        `long:"cache-boltdb" env:"CACHE_BOLTDB" description:"Path to BoltDB cache"`
	CacheTTL       time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"24h" description:"Cached lookup lifetime"`
	BotToken       string        `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token, bot is disabled when empty"`
	LogLevel       string        `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level"`
	LogJSON        bool          `long:"log-json" env:"LOG_JSON" description:"Write logs as JSON"`
}

func main() {
	var opts Opts
	_, err := flags.ParseArgs(&opts, os.Args)
	if err != nil {
		return
	}
	setupLog(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := getRegistry(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load sources")
	}
	cache, closeCache := getCache(opts)
	defer closeCache()

	collector := metrics.NewCollector()
	client := upstream.NewClient()
	lookupOpts := []lookup.Option{
		lookup.WithTimeout(opts.SourceTimeout),
		lookup.WithAPIKey(opts.MWAPIKey),
		lookup.WithMetrics(collector),
	}
	if cache != nil {
		lookupOpts = append(lookupOpts, lookup.WithCache(cache))
	}
	aggregator := lookup.NewAggregator(registry, client, lookupOpts...)
	if opts.MWAPIKey == "" {
		log.Warn().Msg("merriam-webster api key is not set")
	}

	proxyOpts := []proxy.Option{proxy.WithPrefix(opts.ProxyPrefix), proxy.WithMetrics(collector)}
	if opts.NoProxyRewrite {
		proxyOpts = append(proxyOpts, proxy.WithoutRewrite())
	}
	pages := proxy.NewProxy(client, proxyOpts...)

	// initialize Telegram bot
	if opts.BotToken != "" {
		b, err := bot.NewTelegramBot(opts.BotToken, []bot.Handler{
			bot.StartHandler{},
			bot.NewWordHandler(aggregator),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		go b.Start(ctx)
	}

	server := api.NewServer(aggregator, pages, collector)
	if err := server.Run(ctx, opts.Port); err != nil {
		log.Error().Err(err).Msg("failed to run API server")
	}
}

func setupLog(opts Opts) {
	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Warn().Str("level", opts.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !opts.LogJSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func getRegistry(opts Opts) (*sources.Registry, error) {
	list, order := sources.DefaultSources(), sources.DefaultOrder()
	if opts.SourcesFile != "" {
		file, err := sources.LoadFile(opts.SourcesFile)
		if err != nil {
			return nil, err
		}
		list, order = file.Sources, file.Order
		if len(order) == 0 {
			order = make([]string, 0, len(list))
			for _, s := range list {
				order = append(order, s.ID)
			}
		}
	}
	if len(opts.DisplayOrder) > 0 {
		order = opts.DisplayOrder
	}
	return sources.NewRegistry(list, order)
}

func getCache(opts Opts) (db.Cache, func()) {
	if opts.RedisURL != "" {
		redisCache, err := db.NewRedisCache(opts.RedisURL, opts.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create redis client")
		}
		return redisCache, func() {}
	}
	if opts.CacheBoltDB != "" {
		boltDB, err := bolt.Open(opts.CacheBoltDB, 0600, &bolt.Options{Timeout: time.Second})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create boltDB database")
		}
		boltCache, err := db.NewBoltCache(boltDB, opts.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create bolt cache")
		}
		return boltCache, func() {
			if err := boltDB.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close boltDB database")
			}
		}
	}
	return nil, func() {}
}
