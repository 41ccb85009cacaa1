package session

import "expvar"

var (
	metricRoomsCreatedTotal   = expvar.NewInt("rooms_created_total")
	metricRoomsActive         = expvar.NewInt("rooms_active")
	metricGamesFinishedTotal  = expvar.NewInt("games_finished_total")
	metricCardsPlayedTotal    = expvar.NewInt("cards_played_total")
	metricDrawsTotal          = expvar.NewInt("draws_total")
	metricForcedDrawsTotal    = expvar.NewInt("forced_draws_total")
	metricIllegalActionsTotal = expvar.NewInt("illegal_actions_total")
)
