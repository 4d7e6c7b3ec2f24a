package main

import (
	"context"
	"os"

	"civichub/internal/config"
	"civichub/internal/handler"
	"civichub/internal/model"
	"civichub/internal/pkg"
	"civichub/internal/repository/mysql"
	"civichub/internal/repository/redis"
	"civichub/internal/router"
	"civichub/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	pkg.SetSecrets(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	db, err := mysql.InitDB(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mysql")
	}

	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redis.Close()

	if err := db.AutoMigrate(
		&model.User{},
		&model.Location{},
		&model.Community{},
		&model.CommunityMember{},
		&model.MembershipOutbox{},
		&model.Post{},
		&model.PostLike{},
		&model.Incident{},
	); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	// 没配 kafka broker 时事件只打日志
	sender := service.LogSender
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: brokers, Topic: cfg.KafkaTopic})
		if err != nil {
			log.Fatal().Err(err).Msg("init kafka producer")
		}
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.NewOutboxRelayer(db, sender).Run(ctx)

	memberCnt := redis.NewMemberCountCache()
	emailSvc := service.NewEmailService(pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	h := router.Handlers{
		User:  handler.NewUserHandler(service.NewUserService(db, emailSvc)),
		Email: handler.NewEmailHandler(emailSvc),
		Community: handler.NewCommunityHandler(
			service.NewMembershipService(db, memberCnt),
			service.NewCommunityService(db, memberCnt),
		),
		Post: handler.NewPostHandler(
			service.NewPostService(db),
			service.NewPostLikeService(db, redis.NewLikeCountCache(), &redis.DistLock{RDB: redis.Client}),
		),
		Incident: handler.NewIncidentHandler(service.NewIncidentService(db)),
	}

	r := router.InitRouter(h)
	log.Info().Str("addr", cfg.HTTPAddr).Msg("civichub api listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
}
