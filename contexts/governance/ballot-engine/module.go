package ballotengine

import (
	"log/slog"

	httpadapter "ballotbox/contexts/governance/ballot-engine/adapters/http"
	"ballotbox/contexts/governance/ballot-engine/adapters/memory"
	application "ballotbox/contexts/governance/ballot-engine/application"
	"ballotbox/contexts/governance/ballot-engine/application/commands"
	"ballotbox/contexts/governance/ballot-engine/application/queries"
	"ballotbox/contexts/governance/ballot-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls   ports.PollRepository
	Ballots ports.BallotRepository
	Ledger  ports.PowerLedger
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Admin   string
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	access := application.NewAccessController(deps.Admin)
	powerUseCase := commands.PowerUseCase{
		Ledger: deps.Ledger,
		Access: access,
		Logger: deps.Logger,
	}
	pollUseCase := commands.PollUseCase{
		Polls:  deps.Polls,
		Access: access,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Polls:   deps.Polls,
		Ballots: deps.Ballots,
		Ledger:  deps.Ledger,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	pollQueries := queries.PollQueries{
		Polls:   deps.Polls,
		Ballots: deps.Ballots,
		Ledger:  deps.Ledger,
		Access:  access,
		Clock:   deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Power:  powerUseCase,
			Polls:  pollUseCase,
			Votes:  voteUseCase,
			Reads:  pollQueries,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the engine against the in-memory store; tests and
// local runs use it so all ports share one serialized state.
func NewInMemoryModule(admin string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Polls:   store,
		Ballots: store,
		Ledger:  store,
		Clock:   store,
		IDGen:   store,
		Admin:   admin,
		Logger:  logger,
	})
	module.Store = store
	return module
}
