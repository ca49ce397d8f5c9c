package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a handler with the predicate that selects its
// updates and the middleware wrapped around it.
type RegisteredHandler struct {
	Match      tgbot.MatchFunc
	Handler    tgbot.HandlerFunc
	Middleware []tgbot.Middleware
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands plus the forwarded-message handler. Plain text is left to the
// default handler (see NewPromoHandler).
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		Match:   MatchCommand("start"),
		Handler: NewStartHandler(deps),
	}
	handlers["/stats"] = RegisteredHandler{
		Match:   MatchCommand("stats"),
		Handler: NewStatsHandler(deps),
	}
	// /setadmin must stay reachable for non-admins so the first admin can bootstrap.
	handlers["/setadmin"] = RegisteredHandler{
		Match:   MatchCommand("setadmin"),
		Handler: NewSetAdminHandler(deps),
	}
	handlers["/test_mailing"] = RegisteredHandler{
		Match:   MatchCommand("test_mailing"),
		Handler: NewTestMailingHandler(deps),
	}

	handlers["/removeadmin"] = RegisteredHandler{
		Match:      MatchCommand("removeadmin"),
		Handler:    NewRemoveAdminHandler(deps),
		Middleware: []tgbot.Middleware{AdminOnly(deps, "removeadmin")},
	}
	handlers["/listadmins"] = RegisteredHandler{
		Match:      MatchCommand("listadmins"),
		Handler:    NewListAdminsHandler(deps),
		Middleware: []tgbot.Middleware{AdminOnly(deps, "listadmins")},
	}
	handlers["/data"] = RegisteredHandler{
		Match:      MatchCommand("data"),
		Handler:    NewDataHandler(deps),
		Middleware: []tgbot.Middleware{AdminOnly(deps, "data")},
	}
	handlers["/mailing"] = RegisteredHandler{
		Match:      MatchCommand("mailing"),
		Handler:    NewMailingHandler(deps),
		Middleware: []tgbot.Middleware{AdminOnly(deps, "mailing")},
	}

	// Non-admins get a dedicated denial with a bootstrap tip, so no AdminOnly here.
	handlers["forwarded"] = RegisteredHandler{
		Match:   MatchForwarded,
		Handler: NewForwardHandler(deps),
	}

	return handlers
}
