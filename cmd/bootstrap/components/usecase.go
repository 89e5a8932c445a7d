package components

import (
	"log/slog"

	"keypool/internal/infra/notifier"
	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/config"
	"keypool/internal/pkg/cryptobox"
	"keypool/internal/pkg/ratelimit"
	"keypool/internal/usecase/commands"
	"keypool/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	ratelimit.New,
	NewCredentialBox,
	fx.Annotate(
		NewNotifier,
		fx.As(new(commands.Notifier)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewTicketCommands,
		commands.NewStockCommands,
		commands.NewWaitlistCommands,
		commands.NewPanelCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewTicketQueries,
		queries.NewPanelQueries,
		queries.NewAuditQueries,
	),
)

func NewNotifier(cfg config.Config, logger *slog.Logger) *notifier.WebhookNotifier {
	return notifier.NewWebhookNotifier(cfg.Notifier, logger)
}

// NewCredentialBox returns nil when no key is configured; stock commands
// then reject automated fulfillment entries.
func NewCredentialBox(cfg config.Config) (*cryptobox.Box, error) {
	if cfg.Vault.CredentialKey == "" {
		return nil, nil
	}
	return cryptobox.NewBox(cfg.Vault.CredentialKey)
}
