package routes

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	controller "hackbot/controllers"
	"hackbot/middleware"
	"hackbot/platform"
	"hackbot/platform/discord"
)

// ErrUnknownCommand is returned by Dispatch for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

// Router maps slash-command names to handlers. Middleware registered with
// Use wraps every handler added afterwards.
type Router struct {
	mu         sync.RWMutex
	handlers   map[string]platform.CommandHandler
	middleware []middleware.Middleware
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]platform.CommandHandler)}
}

func (r *Router) Use(mw ...middleware.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Handle registers h for the command name, wrapped by the router
// middleware followed by mw.
func (r *Router) Handle(name string, h platform.CommandHandler, mw ...middleware.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chain := append(append([]middleware.Middleware(nil), r.middleware...), mw...)
	r.handlers[name] = middleware.Chain(h, chain...)
}

// Dispatch runs the handler registered for inv.Command.
func (r *Router) Dispatch(ctx context.Context, inv *platform.Invocation) error {
	r.mu.RLock()
	h, ok := r.handlers[inv.Command]
	r.mu.RUnlock()

	if !ok {
		return errors.Wrapf(ErrUnknownCommand, "/%s", inv.Command)
	}
	return h(ctx, inv)
}

// Commands lists the registered command names, sorted.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetupCommands wires every slash command to its controller. Operator
// commands additionally require operatorRole.
func SetupCommands(r *Router, teams *controller.TeamController, admin *controller.AdminController, operatorRole string, logger *logrus.Entry) {
	r.Use(middleware.ReportErrors(), middleware.LogInvocation(logger))

	operator := middleware.RequireRole(operatorRole)

	r.Handle(discord.CommandTeam, teams.CreateTeam)
	r.Handle(discord.CommandJudgingSignup, teams.JudgingSignup)
	r.Handle(discord.CommandPing, admin.Ping)

	r.Handle(discord.CommandEnableTeams, teams.EnableTeams, operator)
	r.Handle(discord.CommandDisableTeams, teams.DisableTeams, operator)
	r.Handle(discord.CommandPostInfo, admin.PostInfo, operator)
	r.Handle(discord.CommandPurge, admin.Purge, operator)

	logger.WithField("commands", r.Commands()).Info("Command routes initialized successfully")
}
