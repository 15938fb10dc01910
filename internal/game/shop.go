package game

import (
	"context"
	"math"

	"github.com/ReC82/LodyLand/internal/content"
	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

type BuyCardResult struct {
	CardKey string             `json:"card_key"`
	Owned   int                `json:"owned"`
	Paid    content.Price      `json:"paid"`
	Coins   int                `json:"coins"`
	Diams   int                `json:"diams"`
	Stocks  map[string]float64 `json:"stocks"`
}

// BuyCard purchases one copy of a shop card, paying with the selected price
// bundle. The ownership cap, lifetime purchase limit and unlock rules all
// gate the sale.
func (e Engine) BuyCard(ctx context.Context, playerID int64, cardKey string, priceIndex int) (BuyCardResult, error) {
	var res BuyCardResult

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		cd, ok := e.Content.Card(cardKey)
		if !ok {
			return newErr(CodeCardNotFound, "unknown card %q", cardKey)
		}
		if !cd.Shop.Enabled {
			return newErr(CodeCardDisabled, "card %q is not for sale", cardKey)
		}
		if priceIndex < 0 || priceIndex >= len(cd.Prices) {
			return newErr(CodeInvalidPriceIndex, "card %q has no price %d", cardKey, priceIndex)
		}
		if cd.Shop.MaxOwned > 0 && s.Cards[cardKey] >= cd.Shop.MaxOwned {
			return &Error{
				Code:     CodeMaxOwnedReached,
				Message:  "maximum copies owned",
				Required: float64(cd.Shop.MaxOwned),
				Current:  float64(s.Cards[cardKey]),
			}
		}
		if cd.Shop.PurchaseLimit > 0 && s.Purchases[cardKey] >= cd.Shop.PurchaseLimit {
			return &Error{
				Code:     CodePurchaseLimit,
				Message:  "purchase limit reached",
				Required: float64(cd.Shop.PurchaseLimit),
				Current:  float64(s.Purchases[cardKey]),
			}
		}

		b := e.bundle(s)
		if ok, fail := cd.UnlockRules.Eval(content.RuleView{
			Level:   s.Player.Level,
			Coins:   s.Player.Coins,
			HasCard: b.HasCard,
		}); !ok {
			return ruleError(fail)
		}

		price := cd.Prices[priceIndex]
		if err := debitPrice(s, price); err != nil {
			return err
		}

		s.Cards[cardKey]++
		s.Purchases[cardKey]++

		res = BuyCardResult{
			CardKey: cardKey,
			Owned:   s.Cards[cardKey],
			Paid:    price,
			Coins:   s.Player.Coins,
			Diams:   s.Player.Diams,
			Stocks:  s.Stocks,
		}
		return nil
	})
	if err != nil {
		return BuyCardResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventCardPurchased, telemetry.EventMetadata{
		"player": playerID,
		"card":   res.CardKey,
		"coins":  res.Paid.Coins,
		"diams":  res.Paid.Diams,
	})
	return res, nil
}

// debitPrice checks an entire price bundle before touching any balance, so a
// partial payment can never be taken.
func debitPrice(s *state.PlayerState, price content.Price) error {
	if price.Coins > 0 && s.Player.Coins < price.Coins {
		return &Error{
			Code:     CodeNotEnoughCoins,
			Message:  "not enough coins",
			Required: float64(price.Coins),
			Current:  float64(s.Player.Coins),
		}
	}
	if price.Diams > 0 && s.Player.Diams < price.Diams {
		return &Error{
			Code:     CodeNotEnoughDiams,
			Message:  "not enough diams",
			Required: float64(price.Diams),
			Current:  float64(s.Player.Diams),
		}
	}
	missing := map[string]float64{}
	for key, qty := range price.Resources {
		if s.Stocks[key] < qty {
			missing[key] = roundHalfUp(qty - s.Stocks[key])
		}
	}
	if len(missing) > 0 {
		return &Error{Code: CodeNotEnoughRes, Message: "missing resources", Missing: missing}
	}

	s.Player.Coins -= price.Coins
	s.Player.Diams -= price.Diams
	for key, qty := range price.Resources {
		s.Stocks[key] = roundHalfUp(s.Stocks[key] - qty)
	}
	return nil
}

type SellResult struct {
	Resource string             `json:"resource"`
	Quantity float64            `json:"quantity"`
	Gained   int                `json:"gained"`
	Coins    int                `json:"coins"`
	Stocks   map[string]float64 `json:"stocks"`
}

// SellResource converts stock into coins at the resource's sell price after
// sell modifiers, rounding the proceeds half up to whole coins.
func (e Engine) SellResource(ctx context.Context, playerID int64, resourceKey string, qty float64) (SellResult, error) {
	// Round first: a sub-tenth request like 0.04 snaps to zero stock and
	// must fail the guard, not succeed as a no-op.
	qty = roundHalfUp(qty)
	if qty <= 0 {
		return SellResult{}, newErr(CodeInvalidQuantity, "quantity must be positive")
	}
	var res SellResult

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		rd, ok := e.Content.Resource(resourceKey)
		if !ok {
			return newErr(CodeResourceNotFound, "unknown resource %q", resourceKey)
		}
		if rd.BaseSellPrice <= 0 {
			return newErr(CodeResourceNotFound, "resource %q cannot be sold", resourceKey)
		}
		if s.Stocks[resourceKey] < qty {
			return &Error{
				Code:     CodeInvalidQuantity,
				Message:  "quantity exceeds stock",
				Required: qty,
				Current:  s.Stocks[resourceKey],
				Key:      resourceKey,
			}
		}

		b := e.bundle(s)
		gained := roundCoins(qty * float64(rd.BaseSellPrice) * b.SellPriceMultiplier(resourceKey))

		s.Stocks[resourceKey] = roundHalfUp(s.Stocks[resourceKey] - qty)
		s.Player.Coins += gained

		res = SellResult{
			Resource: resourceKey,
			Quantity: qty,
			Gained:   gained,
			Coins:    s.Player.Coins,
			Stocks:   s.Stocks,
		}
		return nil
	})
	if err != nil {
		return SellResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventResourceSold, telemetry.EventMetadata{
		"player":   playerID,
		"resource": res.Resource,
		"qty":      res.Quantity,
		"coins":    res.Gained,
	})
	return res, nil
}

type BuyLandSlotResult struct {
	Land       string `json:"land"`
	ExtraSlots int    `json:"extra_slots"`
	TotalSlots int    `json:"total_slots"`
	Cost       int    `json:"cost_diams"`
	Diams      int    `json:"diams"`
}

// LandSlotCost prices the next extra slot on a land: the base cost grows
// geometrically with every slot already purchased.
func LandSlotCost(land content.LandDef, extraOwned int) int {
	mult := land.SlotCostMultiplier
	if mult <= 0 {
		mult = 1
	}
	return roundCoins(float64(land.SlotBaseCostDiams) * math.Pow(mult, float64(extraOwned)))
}

// BuyLandSlot purchases one additional tile slot on a land for diams.
func (e Engine) BuyLandSlot(ctx context.Context, playerID int64, landKey string) (BuyLandSlotResult, error) {
	var res BuyLandSlotResult

	_, err := e.State.Update(ctx, playerID, func(s *state.PlayerState) error {
		land, ok := e.Content.Land(landKey)
		if !ok {
			return newErr(CodeLandNotFound, "unknown land %q", landKey)
		}
		b := e.bundle(s)
		if !b.HasLandAccess(land) {
			return newErr(CodeLandLocked, "no access to land %q", landKey)
		}

		cost := LandSlotCost(land, s.LandSlots[landKey])
		if s.Player.Diams < cost {
			return &Error{
				Code:     CodeNotEnoughDiams,
				Message:  "not enough diams",
				Required: float64(cost),
				Current:  float64(s.Player.Diams),
			}
		}

		s.Player.Diams -= cost
		s.LandSlots[landKey]++

		res = BuyLandSlotResult{
			Land:       landKey,
			ExtraSlots: s.LandSlots[landKey],
			TotalSlots: land.Slots + s.LandSlots[landKey],
			Cost:       cost,
			Diams:      s.Player.Diams,
		}
		return nil
	})
	if err != nil {
		return BuyLandSlotResult{}, translateStateErr(err)
	}

	e.record(telemetry.EventLandSlotPurchased, telemetry.EventMetadata{
		"player": playerID,
		"land":   res.Land,
		"diams":  res.Cost,
	})
	return res, nil
}
