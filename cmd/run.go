package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hackbot/config"
	controller "hackbot/controllers"
	"hackbot/middleware"
	"hackbot/platform/discord"
	"hackbot/routes"
	"hackbot/teams"
	"hackbot/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve commands",
	Long: `Connect to the gateway, register the slash commands for the configured
guild and handle commands and reactions until interrupted. A small HTTP server
exposes status, health and the audit feed on HTTP_PORT.`,
	RunE: runBot,
}

var runSkipRegister bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runSkipRegister, "skip-register", false, "do not overwrite the guild's slash commands on startup")
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	utils.SetupLogger(cfg.Environment, cfg.LogLevel)
	cfg.Log()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     "hackbot@" + controller.Version,
		}); err != nil {
			return errors.Wrap(err, "failed to initialise sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		reserver teams.Reserver
		limiter  fiber.Handler
	)
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Wrapf(err, "failed to reach redis at %s", cfg.Redis.Address)
		}
		defer client.Close()

		reserver = teams.NewRedisReserver(client, "hackbot:team:", cfg.ReservationTTL)
		if cfg.RateLimit > 0 {
			limiter = middleware.RateLimiter(cfg.RateLimit, middleware.NewRedisStorage(client))
		}
	} else {
		limiter = routes.DefaultLimiter(cfg.RateLimit)
	}

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}

	guild := discord.NewGuild(session, cfg.GuildID)
	b := newBot(cfg, guild, reserver)
	log := utils.Component("gateway")

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithField("user", s.State.User.Username).Info("Connected to Discord")
	})
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.GuildID != cfg.GuildID {
			return
		}
		inv, err := guild.NewInvocation(ctx, s, i)
		if err != nil {
			utils.LogError("invocation_failed", err, map[string]interface{}{
				"interaction_id": i.ID,
			})
			return
		}
		b.dispatch(ctx, inv)
	})
	session.AddHandler(guild.OnReactionAdd)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.GuildID != cfg.GuildID {
			return
		}
		b.reaction(ctx, discord.ToReaction(s, r))
	})

	if err := session.Open(); err != nil {
		return errors.Wrap(err, "failed to open gateway session")
	}
	defer session.Close()

	if !runSkipRegister {
		if err := discord.Register(session, cfg.GuildID, discord.Commands(controller.InfoTopics())); err != nil {
			return err
		}
	}

	go b.purger.Start(ctx)

	app := routes.NewApp()
	status := controller.NewStatusController(func() discord.Status {
		return discord.SessionStatus(session)
	}, b.gate, b.feed)
	routes.SetupHTTP(app, status, b.feed, limiter)

	go func() {
		log.Infof("🚀 Server starting on port %s", cfg.ServerPort)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			utils.LogError("http_server_failed", err, nil)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	logrus.Info("Bye")
	return nil
}
