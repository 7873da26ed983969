package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/logger"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

// Bootstrap seeds the data every installation depends on.
type Bootstrap struct{}

// wellKnownBadges are the badges streak milestones reference by ID.
var wellKnownBadges = []domain.Badge{
	{
		Base:        domain.Base{ID: domain.BadgeWeekStreak},
		Name:        "Week Warrior",
		Description: "Kept a streak alive for 7 days",
		Rarity:      domain.RarityCommon,
	},
	{
		Base:        domain.Base{ID: domain.BadgeMonthStreak},
		Name:        "Monthly Momentum",
		Description: "Kept a streak alive for 30 days",
		Rarity:      domain.RarityRare,
	},
	{
		Base:        domain.Base{ID: domain.BadgeCenturyStreak},
		Name:        "Century Club",
		Description: "Kept a streak alive for 100 days",
		Rarity:      domain.RarityEpic,
	},
	{
		Base:        domain.Base{ID: domain.BadgeYearStreak},
		Name:        "Evergreen",
		Description: "Kept a streak alive for a full year",
		Rarity:      domain.RarityLegendary,
	},
}

// ProvideBootstrap seeds the milestone badges so streak rewards always resolve.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	for _, badge := range wellKnownBadges {
		_, err := storeHandle.Badges.Get(ctx, badge.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check badge %s: %w", badge.ID, err)
		}

		b := badge
		b.InitTimestamps()
		if err := storeHandle.Badges.Create(ctx, b.ID, &b); err != nil {
			return nil, fmt.Errorf("seed badge %s: %w", b.ID, err)
		}
		log.Info("Seeded badge", "id", b.ID, "name", b.Name)
	}

	return &Bootstrap{}, nil
}
